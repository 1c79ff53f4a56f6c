package voicescore

import "math"

// Score aggregates pause and speech-rate measurements into the 0-40 voice
// score. Segments with NaN rates are excluded from the average; when nothing
// measurable remains the average is treated as zero.
func Score(pause PauseAnalysis, segments []Segment) ScoreResult {
	pauseScore := scorePauseRatio(pause.PauseRatio)

	avgRate := averageRate(segments)
	rateScore := scoreSpeechRate(avgRate)

	return ScoreResult{
		TotalScore: pauseScore + rateScore,
		IndividualScores: IndividualScores{
			PauseScore:      pauseScore,
			SpeechRateScore: rateScore,
		},
		Details: ScoreDetails{
			PauseRatio:    round2(pause.PauseRatio),
			AvgSpeechRate: round2(avgRate),
		},
	}
}

func scorePauseRatio(ratio float64) int {
	switch {
	case ratio < 17:
		return 20
	case ratio < 25:
		return 10
	default:
		return 0
	}
}

// scoreSpeechRate bands the average syllable rate by listener preference,
// symmetric around the 5.22-5.76 syllables/second sweet spot.
func scoreSpeechRate(rate float64) int {
	switch {
	case rate >= 5.22 && rate <= 5.76:
		return 20
	case (rate >= 4.68 && rate < 5.22) || (rate > 5.76 && rate <= 6.12):
		return 15
	case (rate >= 4.50 && rate < 4.68) || (rate > 6.12 && rate <= 6.48):
		return 10
	case (rate >= 4.13 && rate < 4.50) || (rate > 6.48 && rate <= 6.88):
		return 5
	default:
		return 0
	}
}

func averageRate(segments []Segment) float64 {
	var (
		sum   float64
		count int
	)
	for _, seg := range segments {
		if math.IsNaN(seg.SyllablesPerSecond) {
			continue
		}
		sum += seg.SyllablesPerSecond
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MeasurableSegments counts segments with a usable rate.
func MeasurableSegments(segments []Segment) int {
	count := 0
	for _, seg := range segments {
		if !math.IsNaN(seg.SyllablesPerSecond) {
			count++
		}
	}
	return count
}
