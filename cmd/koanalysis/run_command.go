package main

import (
	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the analysis daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}

			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    level,
				Development: development,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "dev", false, "Enable development logging output")

	return cmd
}
