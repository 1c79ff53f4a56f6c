// Package persist writes finished analyses to the external stores: rubric
// rows to MariaDB and combined score documents to MongoDB.
package persist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/persist/mariadb"
	"github.com/Leewodls/ko-analysis/internal/persist/mongodb"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
	"github.com/Leewodls/ko-analysis/internal/stage"
	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

const progressStagePersisting = "Persisting"

// EvaluationWriter stores rubric evaluation rows.
type EvaluationWriter interface {
	SaveEvaluation(ctx context.Context, eval mariadb.AnswerEvaluation) error
}

// ScoreWriter stores combined score documents.
type ScoreWriter interface {
	SaveScores(ctx context.Context, doc mongodb.ScoreDocument) error
}

// Persister integrates result persistence with the workflow manager. Either
// writer may be nil when its backend is disabled in configuration.
type Persister struct {
	cfg    *config.Config
	store  *queue.Store
	rows   EvaluationWriter
	docs   ScoreWriter
	logger *slog.Logger
}

// NewPersister constructs the persist stage.
func NewPersister(cfg *config.Config, store *queue.Store, rows EvaluationWriter, docs ScoreWriter, logger *slog.Logger) *Persister {
	return &Persister{
		cfg:    cfg,
		store:  store,
		rows:   rows,
		docs:   docs,
		logger: logging.NewComponentLogger(logger, "persist"),
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (p *Persister) SetLogger(logger *slog.Logger) {
	if p == nil {
		return
	}
	p.logger = logging.NewComponentLogger(logger, "persist")
}

// Prepare primes queue progress fields before executing the stage.
func (p *Persister) Prepare(ctx context.Context, item *queue.Item) error {
	if p == nil || p.cfg == nil || p.store == nil {
		return services.Wrap(services.ErrConfiguration, "persist", "prepare", "persist stage is not configured", nil)
	}
	item.InitProgress(progressStagePersisting, "Writing results")
	return p.store.UpdateProgress(ctx, item)
}

// Execute decodes the stored analysis JSON and writes it to every enabled
// backend. With both backends disabled the stage is a logged no-op so local
// setups still complete items.
func (p *Persister) Execute(ctx context.Context, item *queue.Item) error {
	stageStart := time.Now()
	if p == nil || p.cfg == nil || p.store == nil {
		return services.Wrap(services.ErrConfiguration, "persist", "execute", "persist stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "persist", "execute", "queue item is nil", nil)
	}
	if item.UserID == "" || item.QuestionNum <= 0 {
		return services.Wrap(services.ErrValidation, "persist", "execute", "item has no interview identity", nil)
	}

	logger := logging.WithContext(ctx, p.logger)

	voice, evaluation, err := decodeResults(item)
	if err != nil {
		return err
	}

	if p.rows != nil {
		if err := p.rows.SaveEvaluation(ctx, buildAnswerEvaluation(item, evaluation)); err != nil {
			return err
		}
		logger.Debug("evaluation rows written")
	}
	if p.docs != nil {
		doc := mongodb.BuildScoreDocument(item.UserID, item.QuestionNum, item.Transcript, voice, evaluation)
		if err := p.docs.SaveScores(ctx, doc); err != nil {
			return err
		}
		logger.Debug("score document written", logging.Float64("total_score", doc.TotalScore))
	}
	if p.rows == nil && p.docs == nil {
		logger.Warn("no persistence backend enabled; results stay on the queue item",
			logging.String(logging.FieldEventType, "persistence_skipped"),
			logging.String(logging.FieldErrorHint, "enable mariadb or mongodb in the configuration"),
			logging.String(logging.FieldImpact, "downstream systems will not see this analysis"),
		)
	}

	item.SetProgressComplete(progressStagePersisting, "Results written")
	if err := p.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "persist progress", "failed to persist progress", err)
	}

	logger.Info("results persisted",
		logging.Bool("mariadb", p.rows != nil),
		logging.Bool("mongodb", p.docs != nil),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

// HealthCheck reports readiness for the persist stage.
func (p *Persister) HealthCheck(ctx context.Context) stage.Health {
	const name = "persist"
	if p == nil || p.cfg == nil || p.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	return stage.Healthy(name)
}

func decodeResults(item *queue.Item) (*voicescore.Analysis, *rubric.Evaluation, error) {
	var voice *voicescore.Analysis
	if item.VoiceScoreJSON != "" {
		voice = &voicescore.Analysis{}
		if err := json.Unmarshal([]byte(item.VoiceScoreJSON), voice); err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "persist", "execute", "decode voice score json", err)
		}
	}
	var evaluation *rubric.Evaluation
	if item.TextScoreJSON != "" {
		evaluation = &rubric.Evaluation{}
		if err := json.Unmarshal([]byte(item.TextScoreJSON), evaluation); err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "persist", "execute", "decode text score json", err)
		}
	}
	if voice == nil && evaluation == nil {
		return nil, nil, services.Wrap(services.ErrValidation, "persist", "execute", "item has no analysis results", nil)
	}
	return voice, evaluation, nil
}

// buildAnswerEvaluation flattens the rubric evaluation into MariaDB rows.
// The communication category carries the 0-60 text score; other categories
// keep their 0-100 scale. Category order is fixed for deterministic row ids.
func buildAnswerEvaluation(item *queue.Item, evaluation *rubric.Evaluation) mariadb.AnswerEvaluation {
	result := mariadb.AnswerEvaluation{
		UserID:      item.UserID,
		QuestionNum: item.QuestionNum,
	}
	if evaluation == nil {
		return result
	}
	result.Summary = evaluation.Summary
	result.Categories = append(result.Categories, mariadb.CategoryScore{
		Code:     string(rubric.CategoryCommunication),
		Score:    evaluation.TextScore(),
		Strength: evaluation.Communication.StrengthKeyword(),
		Weakness: evaluation.Communication.WeaknessKeyword(),
	})

	codes := make([]string, 0, len(evaluation.Categories))
	for category := range evaluation.Categories {
		codes = append(codes, string(category))
	}
	sort.Strings(codes)
	for _, code := range codes {
		scored := evaluation.Categories[rubric.Category(code)]
		result.Categories = append(result.Categories, mariadb.CategoryScore{
			Code:     code,
			Score:    scored.Score,
			Strength: scored.StrengthKeyword,
			Weakness: scored.WeaknessKeyword,
		})
	}
	return result
}
