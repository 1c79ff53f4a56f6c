package rubric

import (
	"context"
	"strings"
	"testing"
)

type fakeCompleter struct {
	jsonResponses map[string]string
	textResponse  string
	prompts       []string
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	for marker, response := range f.jsonResponses {
		if strings.Contains(userPrompt, marker) {
			return response, nil
		}
	}
	return `{"score": 50, "strength_keyword": "경험", "weakness_keyword": "구체성"}`, nil
}

func (f *fakeCompleter) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	return f.textResponse, nil
}

func TestEvaluateQuestionCoversMappedCategories(t *testing.T) {
	fake := &fakeCompleter{
		jsonResponses: map[string]string{
			"의사소통 능력": `{
				"total_text_score": 48,
				"detailed_scores": {"clarity_score": 12, "logic_score": 12, "expression_score": 12, "appropriateness_score": 12},
				"feedback": {"strengths": ["명확한 표현"], "improvements": ["속도 조절"]}
			}`,
		},
		textResponse: " 지원자는 협업 경험을 중심으로 답변했습니다. ",
	}
	ev := newEvaluatorWith(fake)

	result, err := ev.EvaluateQuestion(context.Background(), "협업 경험에 대해 말씀드리겠습니다.", 3)
	if err != nil {
		t.Fatalf("EvaluateQuestion returned error: %v", err)
	}
	if result.NoResponse {
		t.Fatal("expected NoResponse to be false")
	}
	if result.TextScore() != 48 {
		t.Fatalf("TextScore = %v, want 48", result.TextScore())
	}
	if result.Communication.StrengthKeyword() != "명확한 표현" {
		t.Fatalf("strength keyword = %q", result.Communication.StrengthKeyword())
	}
	// Question 3 maps to communication, org fit and problem solving.
	if len(result.Categories) != 2 {
		t.Fatalf("categories = %v", result.Categories)
	}
	for _, category := range []Category{CategoryOrgFit, CategoryProblemSolving} {
		if _, ok := result.Categories[category]; !ok {
			t.Fatalf("missing category %s", category)
		}
	}
	if _, ok := result.Categories[CategoryTechStack]; ok {
		t.Fatal("tech stack should not be evaluated for question 3")
	}
	if result.Summary != "지원자는 협업 경험을 중심으로 답변했습니다." {
		t.Fatalf("summary = %q", result.Summary)
	}
}

func TestEvaluateQuestionClampsScores(t *testing.T) {
	fake := &fakeCompleter{
		jsonResponses: map[string]string{
			"의사소통 능력": `{"total_text_score": 95}`,
			"조직적합도":   `{"score": 140, "strength_keyword": "팀워크", "weakness_keyword": ""}`,
		},
	}
	ev := newEvaluatorWith(fake)

	result, err := ev.EvaluateQuestion(context.Background(), "답변", 6)
	if err != nil {
		t.Fatalf("EvaluateQuestion returned error: %v", err)
	}
	if result.TextScore() != 60 {
		t.Fatalf("TextScore = %v, want clamp to 60", result.TextScore())
	}
	if got := result.Categories[CategoryOrgFit].Score; got != 100 {
		t.Fatalf("org fit score = %v, want clamp to 100", got)
	}
}

func TestEvaluateQuestionMarksBlankTranscriptAsNoResponse(t *testing.T) {
	fake := &fakeCompleter{textResponse: "답변 없음"}
	ev := newEvaluatorWith(fake)

	result, err := ev.EvaluateQuestion(context.Background(), "   ", 1)
	if err != nil {
		t.Fatalf("EvaluateQuestion returned error: %v", err)
	}
	if !result.NoResponse {
		t.Fatal("expected NoResponse")
	}
	for _, prompt := range fake.prompts {
		if !strings.Contains(prompt, NoResponseText) {
			t.Fatalf("prompt missing no-response marker: %q", prompt)
		}
	}
}

func TestQuestionCategoriesFallsBackToCommunication(t *testing.T) {
	categories := QuestionCategories(99)
	if len(categories) != 1 || categories[0] != CategoryCommunication {
		t.Fatalf("categories = %v", categories)
	}
}
