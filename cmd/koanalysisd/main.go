package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/daemonrun"
)

func main() {
	var configPath string
	var logLevel string
	var development bool

	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level")
	flag.BoolVar(&development, "dev", false, "Enable development logging output")
	flag.Parse()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "ensure directories: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel:    level,
		Development: development,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "koanalysisd: %v\n", err)
		os.Exit(1)
	}
}
