package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
	"github.com/Leewodls/ko-analysis/internal/testsupport"
)

type fakeScorer struct {
	transcript  string
	questionNum int
	evaluation  *rubric.Evaluation
	err         error
}

func (f *fakeScorer) EvaluateQuestion(ctx context.Context, transcript string, questionNum int) (*rubric.Evaluation, error) {
	f.transcript = transcript
	f.questionNum = questionNum
	return f.evaluation, f.err
}

func sampleEvaluation(questionNum int) *rubric.Evaluation {
	return &rubric.Evaluation{
		QuestionNum: questionNum,
		Communication: rubric.CommunicationResult{
			TotalTextScore: 48,
			Feedback: rubric.Feedback{
				Strengths:    []string{"명확한 표현"},
				Improvements: []string{"구체적 사례 부족"},
			},
		},
		Categories: map[rubric.Category]rubric.CategoryResult{
			rubric.CategoryOrgFit: {Score: 70, StrengthKeyword: "협업 경험", WeaknessKeyword: "근거 부족"},
		},
		Summary: "전반적으로 안정적인 답변",
	}
}

func TestEvaluatorStoresRubricResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user8/3/answer.webm", "user8", 3)
	item.Transcript = "저는 협업을 중요하게 생각합니다."

	scorer := &fakeScorer{evaluation: sampleEvaluation(3)}
	evaluator := NewEvaluator(cfg, store, scorer, logging.NewNop())

	if err := evaluator.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := evaluator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if scorer.transcript != item.Transcript {
		t.Errorf("scored transcript = %q, want %q", scorer.transcript, item.Transcript)
	}
	if scorer.questionNum != 3 {
		t.Errorf("scored question = %d, want 3", scorer.questionNum)
	}
	if item.TextScoreJSON == "" {
		t.Fatal("expected text score json to be set")
	}

	var stored rubric.Evaluation
	if err := json.Unmarshal([]byte(item.TextScoreJSON), &stored); err != nil {
		t.Fatalf("decode stored evaluation: %v", err)
	}
	if stored.TextScore() != 48 {
		t.Errorf("text score = %v, want 48", stored.TextScore())
	}
	if stored.Categories[rubric.CategoryOrgFit].Score != 70 {
		t.Errorf("org fit score = %v, want 70", stored.Categories[rubric.CategoryOrgFit].Score)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress percent = %v, want 100", item.ProgressPercent)
	}
}

func TestEvaluatorPassesBlankTranscriptThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user8/3/answer.webm", "user8", 3)

	evaluation := sampleEvaluation(3)
	evaluation.NoResponse = true
	scorer := &fakeScorer{evaluation: evaluation}
	evaluator := NewEvaluator(cfg, store, scorer, logging.NewNop())

	if err := evaluator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if scorer.transcript != "" {
		t.Errorf("scored transcript = %q, want empty", scorer.transcript)
	}
	var stored rubric.Evaluation
	if err := json.Unmarshal([]byte(item.TextScoreJSON), &stored); err != nil {
		t.Fatalf("decode stored evaluation: %v", err)
	}
	if !stored.NoResponse {
		t.Error("expected stored evaluation to flag no-response")
	}
}

func TestEvaluatorRequiresQuestionNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "answer.webm", "user8", 0)

	evaluator := NewEvaluator(cfg, store, &fakeScorer{evaluation: sampleEvaluation(1)}, logging.NewNop())
	err := evaluator.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEvaluatorPropagatesScorerErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user8/3/answer.webm", "user8", 3)

	wantErr := services.Wrap(services.ErrTransient, "rubric", "evaluate", "llm request failed", nil)
	evaluator := NewEvaluator(cfg, store, &fakeScorer{err: wantErr}, logging.NewNop())

	err := evaluator.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if item.TextScoreJSON != "" {
		t.Errorf("text score json set despite failure: %q", item.TextScoreJSON)
	}
}

func TestEvaluatorHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	tests := []struct {
		name      string
		evaluator *Evaluator
		wantReady bool
	}{
		{name: "nil evaluator", evaluator: nil, wantReady: false},
		{name: "nil scorer", evaluator: &Evaluator{cfg: &config.Config{}, store: store}, wantReady: false},
		{name: "configured", evaluator: NewEvaluator(cfg, store, &fakeScorer{}, logging.NewNop()), wantReady: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := tt.evaluator.HealthCheck(context.Background())
			if health.Ready != tt.wantReady {
				t.Errorf("HealthCheck().Ready = %v, want %v (detail: %s)", health.Ready, tt.wantReady, health.Detail)
			}
		})
	}
}
