package rubric

import (
	"context"
	"fmt"
	"strings"

	"github.com/Leewodls/ko-analysis/internal/services"
)

const evaluatorSystemPrompt = "당신은 전문 면접관으로서 지원자의 답변을 객관적이고 정확하게 평가하는 AI입니다. " +
	"각 카테고리에 대해 정해진 척도로 점수를 매기고, 구체적인 강점과 약점 키워드를 제시해야 합니다."

const summarySystemPrompt = "당신은 면접 답변을 요약하는 전문가입니다."

// completer is the subset of Client the evaluator depends on.
type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Evaluator scores a transcript against the rubric categories for its
// question number.
type Evaluator struct {
	llm completer
}

// NewEvaluator creates an evaluator backed by the given client.
func NewEvaluator(client *Client) *Evaluator {
	return &Evaluator{llm: client}
}

// newEvaluatorWith is the injection point for tests.
func newEvaluatorWith(llm completer) *Evaluator {
	return &Evaluator{llm: llm}
}

// CommunicationScores breaks the 0-60 text score into its four components.
type CommunicationScores struct {
	Clarity         float64 `json:"clarity_score"`
	Logic           float64 `json:"logic_score"`
	Expression      float64 `json:"expression_score"`
	Appropriateness float64 `json:"appropriateness_score"`
}

// Feedback carries the model's strength and improvement keywords.
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CommunicationResult is the 0-60 text communication evaluation.
type CommunicationResult struct {
	TotalTextScore float64             `json:"total_text_score"`
	DetailedScores CommunicationScores `json:"detailed_scores"`
	Feedback       Feedback            `json:"feedback"`
}

// StrengthKeyword joins the strength feedback into a single keyword string.
func (r CommunicationResult) StrengthKeyword() string {
	return strings.Join(r.Feedback.Strengths, ", ")
}

// WeaknessKeyword joins the improvement feedback into a single keyword string.
func (r CommunicationResult) WeaknessKeyword() string {
	return strings.Join(r.Feedback.Improvements, ", ")
}

// CategoryResult is a 0-100 evaluation of one non-communication category.
type CategoryResult struct {
	Score           float64 `json:"score"`
	StrengthKeyword string  `json:"strength_keyword"`
	WeaknessKeyword string  `json:"weakness_keyword"`
}

// Evaluation is the full rubric outcome for one answer.
type Evaluation struct {
	QuestionNum   int                         `json:"question_num"`
	Communication CommunicationResult         `json:"communication"`
	Categories    map[Category]CategoryResult `json:"categories"`
	Summary       string                      `json:"summary"`
	NoResponse    bool                        `json:"no_response"`
}

// TextScore returns the 0-60 communication text score.
func (e *Evaluation) TextScore() float64 {
	return e.Communication.TotalTextScore
}

// EvaluateQuestion runs every category for the question number and generates
// an answer summary. A blank transcript is evaluated as an explicit
// no-response rather than rejected.
func (ev *Evaluator) EvaluateQuestion(ctx context.Context, transcript string, questionNum int) (*Evaluation, error) {
	text := strings.TrimSpace(transcript)
	noResponse := text == ""
	if noResponse {
		text = NoResponseText
	}

	result := &Evaluation{
		QuestionNum: questionNum,
		Categories:  make(map[Category]CategoryResult),
		NoResponse:  noResponse,
	}

	for _, category := range QuestionCategories(questionNum) {
		if category == CategoryCommunication {
			comm, err := ev.evaluateCommunication(ctx, text, questionNum)
			if err != nil {
				return nil, err
			}
			result.Communication = comm
			continue
		}
		scored, err := ev.evaluateCategory(ctx, text, category, questionNum)
		if err != nil {
			return nil, err
		}
		result.Categories[category] = scored
	}

	summary, err := ev.Summarize(ctx, transcript)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}

func (ev *Evaluator) evaluateCommunication(ctx context.Context, text string, questionNum int) (CommunicationResult, error) {
	var result CommunicationResult
	content, err := ev.llm.CompleteJSON(ctx, evaluatorSystemPrompt, categoryPrompt(text, CategoryCommunication, questionNum))
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "evaluate", "rubric", "communication completion", err)
	}
	if err := DecodeJSON(content, &result); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "evaluate", "rubric", "parse communication payload", err)
	}
	result.TotalTextScore = clamp(result.TotalTextScore, 0, 60)
	return result, nil
}

func (ev *Evaluator) evaluateCategory(ctx context.Context, text string, category Category, questionNum int) (CategoryResult, error) {
	var result CategoryResult
	content, err := ev.llm.CompleteJSON(ctx, evaluatorSystemPrompt, categoryPrompt(text, category, questionNum))
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "evaluate", "rubric", string(category)+" completion", err)
	}
	if err := DecodeJSON(content, &result); err != nil {
		return result, services.Wrap(services.ErrExternalTool, "evaluate", "rubric", "parse "+string(category)+" payload", err)
	}
	result.Score = clamp(result.Score, 0, 100)
	result.StrengthKeyword = strings.TrimSpace(result.StrengthKeyword)
	result.WeaknessKeyword = strings.TrimSpace(result.WeaknessKeyword)
	return result, nil
}

// Summarize produces a short Korean summary of the answer.
func (ev *Evaluator) Summarize(ctx context.Context, transcript string) (string, error) {
	text := strings.TrimSpace(transcript)
	noSpeechNote := ""
	if text == "" {
		text = NoResponseText
		noSpeechNote = "\n\n**주의: 발화가 없는 경우이므로 '답변 없음' 또는 '무응답'으로 요약해주세요.**"
	}
	prompt := fmt.Sprintf(`다음 면접 답변을 간결하게 요약해주세요 (2-3문장):

답변 내용:
%q%s

요약 지침:
- 핵심 내용만 간단명료하게
- 지원자의 주요 강점이나 경험 중심으로
- 객관적이고 중립적인 톤으로 작성`, text, noSpeechNote)

	summary, err := ev.llm.CompleteText(ctx, summarySystemPrompt, prompt)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "evaluate", "rubric", "answer summary", err)
	}
	return strings.TrimSpace(summary), nil
}

func categoryPrompt(text string, category Category, questionNum int) string {
	noSpeechInstruction := ""
	if text == NoResponseText {
		noSpeechInstruction = `**중요: 이 답변은 발화가 없거나 무응답입니다.**
- 모든 점수는 0점으로 평가해주세요
- 강점 키워드: 빈 문자열 또는 빈 배열
- 약점 키워드: "발화 없음", "무응답", "답변 부재" 등 무응답 관련 키워드
- 평가 코멘트: 발화가 없어 평가할 수 없음을 명시

`
	}
	return fmt.Sprintf(`다음 면접 답변을 %s 관점에서 평가해주세요.

질문 번호: %d
답변 내용:
%q

%s%s

%s`, category.KoreanName(), questionNum, text, noSpeechInstruction, category.criteria(), category.outputFormat())
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
