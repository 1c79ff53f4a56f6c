// Package acoustic runs the voice scoring engine over converted WAV files.
package acoustic

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/media/wavio"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/stage"
	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

const progressStageAnalyzing = "Analyzing"

// Analyzer integrates acoustic scoring with the workflow manager.
type Analyzer struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	// decode is swappable for tests.
	decode func(path string) (voicescore.Waveform, error)
}

// NewAnalyzer constructs the acoustic stage.
func NewAnalyzer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "acoustic"),
		decode: wavio.DecodeFile,
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (a *Analyzer) SetLogger(logger *slog.Logger) {
	if a == nil {
		return
	}
	a.logger = logging.NewComponentLogger(logger, "acoustic")
}

// SetDecoder overrides WAV decoding (for testing).
func (a *Analyzer) SetDecoder(decode func(path string) (voicescore.Waveform, error)) {
	a.decode = decode
}

// Prepare primes queue progress fields before executing the stage.
func (a *Analyzer) Prepare(ctx context.Context, item *queue.Item) error {
	if a == nil || a.cfg == nil || a.store == nil {
		return services.Wrap(services.ErrConfiguration, "acoustic", "prepare", "acoustic stage is not configured", nil)
	}
	item.InitProgress(progressStageAnalyzing, "Scoring voice delivery")
	return a.store.UpdateProgress(ctx, item)
}

// Execute decodes the WAV file, runs the scoring engine and stores the
// resulting analysis JSON on the item.
func (a *Analyzer) Execute(ctx context.Context, item *queue.Item) error {
	stageStart := time.Now()
	if a == nil || a.cfg == nil || a.store == nil {
		return services.Wrap(services.ErrConfiguration, "acoustic", "execute", "acoustic stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "acoustic", "execute", "queue item is nil", nil)
	}
	if item.WAVFile == "" {
		return services.Wrap(services.ErrValidation, "acoustic", "execute", "item has no wav file", nil)
	}

	logger := logging.WithContext(ctx, a.logger)

	waveform, err := a.decode(item.WAVFile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "acoustic", "execute", "decode wav", err)
	}

	analysis, err := voicescore.Analyze(waveform, a.scoringOptions(item))
	if err != nil {
		return services.Wrap(services.ErrValidation, "acoustic", "execute", "analyze waveform", err)
	}

	encoded, err := json.Marshal(analysis)
	if err != nil {
		return services.Wrap(services.ErrTransient, "acoustic", "execute", "encode analysis", err)
	}
	item.VoiceScoreJSON = string(encoded)
	item.SetProgressComplete(progressStageAnalyzing, "Voice score ready")
	if err := a.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "acoustic", "persist progress", "failed to persist acoustic progress", err)
	}

	logger.Info("acoustic analysis complete",
		logging.Int("total_score", analysis.Scores.TotalScore),
		logging.Float64("pause_ratio", analysis.Pause.PauseRatio),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// scoringOptions maps the scoring configuration onto engine options, using
// the item's gender when present.
func (a *Analyzer) scoringOptions(item *queue.Item) voicescore.Options {
	scoring := a.cfg.Scoring
	gender := item.Gender
	if gender == "" {
		gender = scoring.DefaultGender
	}
	return voicescore.Options{
		EnergyThreshold: scoring.EnergyThreshold,
		MinPauseSeconds: scoring.MinPauseSeconds,
		FrameLength:     scoring.FrameLength,
		HopLength:       scoring.HopLength,
		SegmentSeconds:  scoring.SegmentSeconds,
		Gender:          gender,
	}
}

// HealthCheck reports readiness for the acoustic stage.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "acoustic"
	if a == nil || a.cfg == nil || a.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	return stage.Healthy(name)
}
