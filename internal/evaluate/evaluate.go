// Package evaluate scores transcripts against the interview rubric.
package evaluate

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

const progressStageEvaluating = "Evaluating"

// RubricScorer evaluates one transcript for one question.
type RubricScorer interface {
	EvaluateQuestion(ctx context.Context, transcript string, questionNum int) (*rubric.Evaluation, error)
}

// Evaluator integrates rubric scoring with the workflow manager.
type Evaluator struct {
	cfg    *config.Config
	store  *queue.Store
	scorer RubricScorer
	logger *slog.Logger
}

// NewEvaluator constructs the evaluate stage.
func NewEvaluator(cfg *config.Config, store *queue.Store, scorer RubricScorer, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		cfg:    cfg,
		store:  store,
		scorer: scorer,
		logger: logging.NewComponentLogger(logger, "evaluate"),
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (e *Evaluator) SetLogger(logger *slog.Logger) {
	if e == nil {
		return
	}
	e.logger = logging.NewComponentLogger(logger, "evaluate")
}

// Prepare primes queue progress fields before executing the stage.
func (e *Evaluator) Prepare(ctx context.Context, item *queue.Item) error {
	if e == nil || e.cfg == nil || e.store == nil {
		return services.Wrap(services.ErrConfiguration, "evaluate", "prepare", "evaluate stage is not configured", nil)
	}
	item.InitProgress(progressStageEvaluating, "Scoring transcript")
	return e.store.UpdateProgress(ctx, item)
}

// Execute evaluates the item's transcript and stores the rubric result JSON.
// A blank transcript is passed through so the rubric records an explicit
// no-response instead of failing the item.
func (e *Evaluator) Execute(ctx context.Context, item *queue.Item) error {
	stageStart := time.Now()
	if e == nil || e.cfg == nil || e.store == nil {
		return services.Wrap(services.ErrConfiguration, "evaluate", "execute", "evaluate stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "evaluate", "execute", "queue item is nil", nil)
	}
	if e.scorer == nil {
		return services.Wrap(services.ErrConfiguration, "evaluate", "execute", "rubric scorer unavailable", nil)
	}
	if item.QuestionNum <= 0 {
		return services.Wrap(services.ErrValidation, "evaluate", "execute", "item has no question number", nil)
	}

	logger := logging.WithContext(ctx, e.logger)

	evaluation, err := e.scorer.EvaluateQuestion(ctx, item.Transcript, item.QuestionNum)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(evaluation)
	if err != nil {
		return services.Wrap(services.ErrTransient, "evaluate", "execute", "encode evaluation", err)
	}
	item.TextScoreJSON = string(encoded)
	item.SetProgressComplete(progressStageEvaluating, "Rubric scores ready")
	if err := e.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "evaluate", "persist progress", "failed to persist evaluate progress", err)
	}

	logger.Info("rubric evaluation complete",
		logging.Float64("text_score", evaluation.TextScore()),
		logging.Int("categories", len(evaluation.Categories)),
		logging.Bool("no_response", evaluation.NoResponse),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// HealthCheck reports readiness for the evaluate stage.
func (e *Evaluator) HealthCheck(ctx context.Context) stage.Health {
	const name = "evaluate"
	if e == nil || e.cfg == nil || e.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if e.scorer == nil {
		return stage.Unhealthy(name, "rubric scorer unavailable")
	}
	return stage.Healthy(name)
}
