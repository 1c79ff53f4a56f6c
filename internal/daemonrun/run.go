// Package daemonrun wires daemon dependencies together and runs the process
// until it receives a termination signal.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Leewodls/ko-analysis/internal/acoustic"
	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/convert"
	"github.com/Leewodls/ko-analysis/internal/daemon"
	"github.com/Leewodls/ko-analysis/internal/deps"
	"github.com/Leewodls/ko-analysis/internal/evaluate"
	"github.com/Leewodls/ko-analysis/internal/fetch"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/persist"
	"github.com/Leewodls/ko-analysis/internal/persist/mariadb"
	"github.com/Leewodls/ko-analysis/internal/persist/mongodb"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services/ffmpeg"
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
	"github.com/Leewodls/ko-analysis/internal/services/s3"
	"github.com/Leewodls/ko-analysis/internal/services/whisper"
	"github.com/Leewodls/ko-analysis/internal/transcribe"
	"github.com/Leewodls/ko-analysis/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the analysis daemon runtime loop. It blocks until the context
// is cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("koanalysis-%s.log", runID))
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "koanalysisd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager := workflow.NewManager(cfg, store, logger)
	closeStages, err := configureStages(signalCtx, manager, cfg, store, logger)
	if err != nil {
		return err
	}
	defer closeStages()

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and queue database access"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("analysis daemon shutting down")
	return nil
}

// configureStages builds the pipeline services and registers them with the
// workflow manager. Optional backends are constructed only when enabled; a
// failed S3 client leaves the fetch stage unhealthy rather than aborting
// startup so the health endpoint can report the problem.
func configureStages(ctx context.Context, manager *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger) (func(), error) {
	var fetcherClient fetch.Downloader
	if client, err := s3.NewClient(ctx, cfg.S3); err != nil {
		logger.Warn("s3 client unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "s3_client_unavailable"),
			logging.String(logging.FieldErrorHint, "check s3 credentials and region"),
			logging.String(logging.FieldImpact, "fetch stage will fail until s3 is configured"),
		)
	} else {
		fetcherClient = client
	}

	evaluator := rubric.NewEvaluator(rubric.NewClient(cfg.LLM))

	closers := make([]func(), 0, 2)
	var rows persist.EvaluationWriter
	if cfg.MariaDB.Enabled {
		mariaStore, err := mariadb.Open(ctx, cfg.MariaDB)
		if err != nil {
			return nil, fmt.Errorf("connect mariadb: %w", err)
		}
		closers = append(closers, func() { _ = mariaStore.Close() })
		rows = mariaStore
	}
	var docs persist.ScoreWriter
	if cfg.MongoDB.Enabled {
		mongoStore, err := mongodb.Connect(ctx, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		closers = append(closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoStore.Close(closeCtx)
		})
		docs = mongoStore
	}

	manager.ConfigureStages(workflow.StageSet{
		Fetcher:     fetch.NewFetcher(cfg, store, fetcherClient, logger),
		Converter:   convert.NewConverter(cfg, store, ffmpeg.NewService(cfg.FFmpeg), logger),
		Analyzer:    acoustic.NewAnalyzer(cfg, store, logger),
		Transcriber: transcribe.NewTranscriber(cfg, store, whisper.NewService(cfg.Whisper), logger),
		Evaluator:   evaluate.NewEvaluator(cfg, store, evaluator, logger),
		Persister:   persist.NewPersister(cfg, store, rows, docs, logger),
	})

	return func() {
		for _, closer := range closers {
			closer()
		}
	}, nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []any{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("llm_key_present", strings.TrimSpace(cfg.LLM.APIKey) != ""),
		logging.Bool("s3_bucket_present", strings.TrimSpace(cfg.S3.Bucket) != ""),
		logging.Bool("mariadb_enabled", cfg.MariaDB.Enabled),
		logging.Bool("mongodb_enabled", cfg.MongoDB.Enabled),
	}
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		prefix := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(prefix+"_available", status.Available),
			logging.String(prefix+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", attrs...)
}
