// Package convert transcodes fetched recordings into the mono WAV form the
// rest of the pipeline consumes.
package convert

import (
	"context"
	"log/slog"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/ffmpeg"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

const progressStageConverting = "Converting"

// Transcoder converts a source recording into a WAV file.
type Transcoder interface {
	ConvertToWAV(ctx context.Context, source, dest string) error
}

// Converter integrates audio conversion with the workflow manager.
type Converter struct {
	cfg     *config.Config
	store   *queue.Store
	service Transcoder
	logger  *slog.Logger
}

// NewConverter constructs the convert stage.
func NewConverter(cfg *config.Config, store *queue.Store, service Transcoder, logger *slog.Logger) *Converter {
	return &Converter{
		cfg:     cfg,
		store:   store,
		service: service,
		logger:  logging.NewComponentLogger(logger, "convert"),
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (c *Converter) SetLogger(logger *slog.Logger) {
	if c == nil {
		return
	}
	c.logger = logging.NewComponentLogger(logger, "convert")
}

// Prepare primes queue progress fields before executing the stage.
func (c *Converter) Prepare(ctx context.Context, item *queue.Item) error {
	if c == nil || c.cfg == nil || c.store == nil {
		return services.Wrap(services.ErrConfiguration, "convert", "prepare", "convert stage is not configured", nil)
	}
	item.InitProgress(progressStageConverting, "Transcoding to WAV")
	return c.store.UpdateProgress(ctx, item)
}

// Execute transcodes the fetched source file and records the WAV path.
func (c *Converter) Execute(ctx context.Context, item *queue.Item) error {
	if c == nil || c.cfg == nil || c.store == nil {
		return services.Wrap(services.ErrConfiguration, "convert", "execute", "convert stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "convert", "execute", "queue item is nil", nil)
	}
	if c.service == nil {
		return services.Wrap(services.ErrConfiguration, "convert", "execute", "ffmpeg service unavailable", nil)
	}
	if item.SourceFile == "" {
		return services.Wrap(services.ErrValidation, "convert", "execute", "item has no source file", nil)
	}

	workDir := item.WorkRoot(c.cfg.Paths.WorkDir)
	dest := ffmpeg.WAVPath(workDir, item.SourceFile)
	if err := c.service.ConvertToWAV(ctx, item.SourceFile, dest); err != nil {
		return err
	}

	item.WAVFile = dest
	item.SetProgressComplete(progressStageConverting, "WAV ready")
	if err := c.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "convert", "persist progress", "failed to persist convert progress", err)
	}

	logging.WithContext(ctx, c.logger).Info("recording converted", logging.String("wav_file", dest))
	return nil
}

// HealthCheck reports readiness for the convert stage.
func (c *Converter) HealthCheck(ctx context.Context) stage.Health {
	const name = "convert"
	if c == nil || c.cfg == nil || c.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if c.service == nil {
		return stage.Unhealthy(name, "ffmpeg service unavailable")
	}
	return stage.Healthy(name)
}
