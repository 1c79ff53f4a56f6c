package rubric

// Category identifies one rubric axis of the interview evaluation.
type Category string

const (
	CategoryCommunication    Category = "COMMUNICATION"
	CategoryOrgFit           Category = "ORG_FIT"
	CategoryJobCompatibility Category = "JOB_COMPATIBILITY"
	CategoryTechStack        Category = "TECH_STACK"
	CategoryProblemSolving   Category = "PROBLEM_SOLVING"
)

// NoResponseText is substituted for blank transcripts so the model evaluates
// a non-answer explicitly instead of hallucinating content.
const NoResponseText = "발화 없음 (무응답)"

// questionCategories maps the interview question number to the rubric
// categories that question is scored against.
var questionCategories = map[int][]Category{
	1: {CategoryCommunication, CategoryOrgFit, CategoryJobCompatibility, CategoryTechStack},
	2: {CategoryCommunication, CategoryOrgFit, CategoryJobCompatibility, CategoryTechStack},
	3: {CategoryCommunication, CategoryOrgFit, CategoryProblemSolving},
	4: {CategoryCommunication, CategoryOrgFit, CategoryJobCompatibility, CategoryTechStack, CategoryProblemSolving},
	5: {CategoryCommunication, CategoryOrgFit, CategoryJobCompatibility, CategoryTechStack, CategoryProblemSolving},
	6: {CategoryCommunication, CategoryOrgFit, CategoryJobCompatibility},
	7: {CategoryCommunication, CategoryOrgFit, CategoryProblemSolving},
}

// QuestionCategories returns the rubric categories for a question number.
// Unknown question numbers fall back to communication only.
func QuestionCategories(questionNum int) []Category {
	if categories, ok := questionCategories[questionNum]; ok {
		return categories
	}
	return []Category{CategoryCommunication}
}

// KoreanName returns the Korean display name for a category.
func (c Category) KoreanName() string {
	switch c {
	case CategoryCommunication:
		return "의사소통 능력"
	case CategoryOrgFit:
		return "조직적합도"
	case CategoryJobCompatibility:
		return "직무적합도"
	case CategoryTechStack:
		return "보유역량"
	case CategoryProblemSolving:
		return "문제해결력"
	default:
		return string(c)
	}
}

// criteria returns the evaluation guidance for a category.
func (c Category) criteria() string {
	switch c {
	case CategoryCommunication:
		return "의사소통 능력을 평가해주세요. 명확성, 논리성, 표현력, 적절성을 중심으로 각 항목 0-15점, 합계 0-60점으로 평가하세요."
	case CategoryJobCompatibility:
		return "직무적합도를 평가해주세요. 직무 관련 경험, 기술, 이해도를 중심으로 0-100점으로 평가하세요."
	case CategoryOrgFit:
		return "조직적합도를 평가해주세요. 팀워크, 협업 능력, 조직 문화 적응력을 중심으로 0-100점으로 평가하세요."
	case CategoryTechStack:
		return "보유역량을 평가해주세요. 기술적 지식, 경험, 학습 능력을 중심으로 0-100점으로 평가하세요."
	case CategoryProblemSolving:
		return "문제해결력을 평가해주세요. 분석 능력, 창의적 사고, 해결 경험을 중심으로 0-100점으로 평가하세요."
	default:
		return "해당 카테고리를 0-100점으로 평가해주세요."
	}
}

// outputFormat returns the JSON schema instruction for a category response.
func (c Category) outputFormat() string {
	if c == CategoryCommunication {
		return `응답은 반드시 다음 JSON 형식으로 작성해주세요:
{
    "total_text_score": [0-60 점수],
    "detailed_scores": {
        "clarity_score": [0-15 점수],
        "logic_score": [0-15 점수],
        "expression_score": [0-15 점수],
        "appropriateness_score": [0-15 점수]
    },
    "feedback": {
        "strengths": ["강점1", "강점2"],
        "improvements": ["개선점1", "개선점2"]
    }
}`
	}
	return `응답은 반드시 다음 JSON 형식으로 작성해주세요:
{
    "score": [0-100 점수],
    "strength_keyword": "[강점을 나타내는 키워드나 문구]",
    "weakness_keyword": "[약점을 나타내는 키워드나 문구]"
}`
}
