package mongodb

import (
	"github.com/Leewodls/ko-analysis/internal/services/rubric"
	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

// BuildScoreDocument combines an acoustic analysis and a rubric evaluation
// into the persisted document. The composite total is the 0-40 voice score
// plus the 0-60 text score.
func BuildScoreDocument(userID string, questionNum int, transcript string, voice *voicescore.Analysis, eval *rubric.Evaluation) ScoreDocument {
	doc := ScoreDocument{
		UserID:      userID,
		QuestionNum: questionNum,
		Transcript:  transcript,
	}
	if voice != nil {
		doc.VoiceAnalysis = VoiceAnalysis{
			TotalScore:       float64(voice.Scores.TotalScore),
			IndividualScores: voice.Scores.IndividualScores,
			Details:          voice.Scores.Details,
		}
	}
	if eval != nil {
		categories := make(map[string]float64, len(eval.Categories))
		for category, result := range eval.Categories {
			categories[string(category)] = result.Score
		}
		doc.TextAnalysis = TextAnalysis{
			TotalScore: eval.TextScore(),
			Categories: categories,
			Summary:    eval.Summary,
		}
	}
	doc.TotalScore = doc.VoiceAnalysis.TotalScore + doc.TextAnalysis.TotalScore
	return doc
}
