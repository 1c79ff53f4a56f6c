// Package transcribe turns converted WAV files into Korean transcripts.
package transcribe

import (
	"context"
	"log/slog"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/whisper"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

const progressStageTranscribing = "Transcribing"

// Speech2Text transcribes a WAV file.
type Speech2Text interface {
	Transcribe(ctx context.Context, source, outputDir string) (whisper.Result, error)
}

// Transcriber integrates speech-to-text with the workflow manager.
type Transcriber struct {
	cfg     *config.Config
	store   *queue.Store
	service Speech2Text
	logger  *slog.Logger
}

// NewTranscriber constructs the transcribe stage.
func NewTranscriber(cfg *config.Config, store *queue.Store, service Speech2Text, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		cfg:     cfg,
		store:   store,
		service: service,
		logger:  logging.NewComponentLogger(logger, "transcribe"),
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (t *Transcriber) SetLogger(logger *slog.Logger) {
	if t == nil {
		return
	}
	t.logger = logging.NewComponentLogger(logger, "transcribe")
}

// Prepare primes queue progress fields before executing the stage.
func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	if t == nil || t.cfg == nil || t.store == nil {
		return services.Wrap(services.ErrConfiguration, "transcribe", "prepare", "transcribe stage is not configured", nil)
	}
	item.InitProgress(progressStageTranscribing, "Running speech-to-text")
	return t.store.UpdateProgress(ctx, item)
}

// Execute transcribes the item's WAV file and stores the transcript. An
// empty transcript is legal here; the evaluator treats it as a no-response.
func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	if t == nil || t.cfg == nil || t.store == nil {
		return services.Wrap(services.ErrConfiguration, "transcribe", "execute", "transcribe stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "transcribe", "execute", "queue item is nil", nil)
	}
	if t.service == nil {
		return services.Wrap(services.ErrConfiguration, "transcribe", "execute", "whisper service unavailable", nil)
	}
	if item.WAVFile == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "execute", "item has no wav file", nil)
	}

	logger := logging.WithContext(ctx, t.logger)

	result, err := t.service.Transcribe(ctx, item.WAVFile, item.WorkRoot(t.cfg.Paths.WorkDir))
	if err != nil {
		return err
	}

	item.Transcript = result.Text
	item.TranscriptJSON = result.RawJSON
	item.SetProgressComplete(progressStageTranscribing, "Transcript ready")
	if err := t.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "transcribe", "persist progress", "failed to persist transcribe progress", err)
	}

	if result.Text == "" {
		logger.Warn("transcript is empty",
			logging.String(logging.FieldEventType, "empty_transcript"),
			logging.String(logging.FieldErrorHint, "recording may contain no speech"),
			logging.String(logging.FieldImpact, "answer will be evaluated as a no-response"),
		)
	} else {
		logger.Info("transcription complete", logging.Int("transcript_chars", len([]rune(result.Text))))
	}
	return nil
}

// HealthCheck reports readiness for the transcribe stage.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	const name = "transcribe"
	if t == nil || t.cfg == nil || t.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if t.service == nil {
		return stage.Unhealthy(name, "whisper service unavailable")
	}
	return stage.Healthy(name)
}
