package voicescore_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

const testSampleRate = 16000

// speech produces a loud tone segment whose RMS sits well above the silence
// threshold.
func speech(seconds float64) []float64 {
	n := int(seconds * testSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*220*float64(i)/testSampleRate)
	}
	return samples
}

func silence(seconds float64) []float64 {
	return make([]float64, int(seconds*testSampleRate))
}

func concat(parts ...[]float64) voicescore.Waveform {
	var samples []float64
	for _, p := range parts {
		samples = append(samples, p...)
	}
	return voicescore.Waveform{Samples: samples, SampleRate: testSampleRate}
}

func TestAnalyzeRejectsEmptyWaveform(t *testing.T) {
	_, err := voicescore.Analyze(voicescore.Waveform{}, voicescore.Options{})
	if !errors.Is(err, voicescore.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = voicescore.AnalyzePauses(voicescore.Waveform{SampleRate: testSampleRate}, voicescore.Options{})
	if !errors.Is(err, voicescore.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero samples, got %v", err)
	}
}

func TestPureSilenceScoresZero(t *testing.T) {
	wave := concat(silence(10))

	analysis, err := voicescore.Analyze(wave, voicescore.Options{SegmentSeconds: 5})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if analysis.Pause.Grade != voicescore.GradePoor {
		t.Fatalf("expected poor grade for silence, got %q", analysis.Pause.Grade)
	}
	if analysis.Pause.PauseRatio < 90 {
		t.Fatalf("expected pause ratio near 100, got %v", analysis.Pause.PauseRatio)
	}
	if analysis.Scores.TotalScore != 0 {
		t.Fatalf("expected total score 0, got %d", analysis.Scores.TotalScore)
	}
	for _, seg := range analysis.SpeechRate {
		if math.IsNaN(seg.SyllablesPerSecond) {
			t.Fatal("silence must measure as rate 0, not NaN")
		}
		if seg.SyllablesPerSecond != 0 {
			t.Fatalf("expected zero rate in silence, got %v", seg.SyllablesPerSecond)
		}
	}
}

func TestShortGapIsNotAPause(t *testing.T) {
	wave := concat(speech(1), silence(0.4), speech(1))

	analysis, err := voicescore.AnalyzePauses(wave, voicescore.Options{})
	if err != nil {
		t.Fatalf("AnalyzePauses failed: %v", err)
	}
	if analysis.PauseCount != 0 {
		t.Fatalf("expected 0.4s gap to be ignored, got %d pauses (%v)", analysis.PauseCount, analysis.PauseSegments)
	}
	if analysis.PauseDuration != 0 {
		t.Fatalf("expected zero pause duration, got %v", analysis.PauseDuration)
	}
}

func TestLongGapIsCommitted(t *testing.T) {
	wave := concat(speech(1), silence(1), speech(1))

	analysis, err := voicescore.AnalyzePauses(wave, voicescore.Options{})
	if err != nil {
		t.Fatalf("AnalyzePauses failed: %v", err)
	}
	if analysis.PauseCount != 1 {
		t.Fatalf("expected one committed pause, got %d (%v)", analysis.PauseCount, analysis.PauseSegments)
	}
	if analysis.PauseDuration < 0.5 || analysis.PauseDuration > 1 {
		t.Fatalf("unexpected pause duration %v", analysis.PauseDuration)
	}
}

func TestTrailingSilenceFlushed(t *testing.T) {
	wave := concat(speech(1), silence(2))

	analysis, err := voicescore.AnalyzePauses(wave, voicescore.Options{})
	if err != nil {
		t.Fatalf("AnalyzePauses failed: %v", err)
	}
	if analysis.PauseCount != 1 {
		t.Fatalf("expected trailing silence to flush as a pause, got %d", analysis.PauseCount)
	}
	if analysis.PauseDuration < 1.5 {
		t.Fatalf("expected roughly 2s trailing pause, got %v", analysis.PauseDuration)
	}
}

func TestSegmentWindowsClipAndDropSlivers(t *testing.T) {
	// 10.05s signal at 1s windows: the trailing 0.05s sliver is dropped.
	wave := concat(speech(10.05))

	segments := voicescore.SegmentRates(wave, voicescore.Options{SegmentSeconds: 1})
	if len(segments) != 10 {
		t.Fatalf("expected 10 segments, got %d", len(segments))
	}
	last := segments[len(segments)-1]
	if last.StartTime != 9 || last.EndTime != 10 {
		t.Fatalf("unexpected final window: %v-%v", last.StartTime, last.EndTime)
	}
}

func TestScoreBounds(t *testing.T) {
	wave := concat(speech(3), silence(1), speech(2), silence(0.7), speech(4))

	analysis, err := voicescore.Analyze(wave, voicescore.Options{SegmentSeconds: 1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	total := analysis.Scores.TotalScore
	if total < 0 || total > 40 {
		t.Fatalf("total score out of bounds: %d", total)
	}
	sum := analysis.Scores.IndividualScores.PauseScore + analysis.Scores.IndividualScores.SpeechRateScore
	if total != sum {
		t.Fatalf("total %d does not equal component sum %d", total, sum)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	wave := concat(speech(2), silence(0.8), speech(3))
	opts := voicescore.Options{SegmentSeconds: 1, Gender: "female"}

	first, err := voicescore.Analyze(wave, opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := voicescore.Analyze(wave, opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results for identical input")
	}
	if first.Gender != "female" {
		t.Fatalf("expected gender passthrough, got %q", first.Gender)
	}
}

func TestScorePauseBands(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 20},
		{16.99, 20},
		{17, 10},
		{24.99, 10},
		{25, 0},
		{80, 0},
	}
	for _, tc := range tests {
		result := voicescore.Score(voicescore.PauseAnalysis{PauseRatio: tc.ratio}, nil)
		if result.IndividualScores.PauseScore != tc.want {
			t.Fatalf("ratio %v: expected pause score %d, got %d", tc.ratio, tc.want, result.IndividualScores.PauseScore)
		}
	}
}

func TestScoreSpeechRateBands(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{5.22, 20},
		{5.50, 20},
		{5.76, 20},
		{5.77, 15},
		{4.68, 15},
		{6.12, 15},
		{4.50, 10},
		{6.48, 10},
		{4.13, 5},
		{6.88, 5},
		{4.12, 0},
		{6.89, 0},
		{0, 0},
	}
	for _, tc := range tests {
		segments := []voicescore.Segment{{SyllablesPerSecond: tc.rate}}
		result := voicescore.Score(voicescore.PauseAnalysis{PauseRatio: 50}, segments)
		if result.IndividualScores.SpeechRateScore != tc.want {
			t.Fatalf("rate %v: expected score %d, got %d", tc.rate, tc.want, result.IndividualScores.SpeechRateScore)
		}
	}
}

func TestScoreIdealDelivery(t *testing.T) {
	pause := voicescore.PauseAnalysis{PauseRatio: 10}
	segments := []voicescore.Segment{{SyllablesPerSecond: 5.5}}

	result := voicescore.Score(pause, segments)
	if result.TotalScore != 40 {
		t.Fatalf("expected perfect score 40, got %d", result.TotalScore)
	}
	if result.Details.PauseRatio != 10 || result.Details.AvgSpeechRate != 5.5 {
		t.Fatalf("unexpected details: %#v", result.Details)
	}
}

func TestScoreSkipsNaNRates(t *testing.T) {
	segments := []voicescore.Segment{
		{SyllablesPerSecond: math.NaN()},
		{SyllablesPerSecond: 5.5},
		{SyllablesPerSecond: math.NaN()},
	}
	result := voicescore.Score(voicescore.PauseAnalysis{PauseRatio: 10}, segments)
	if result.IndividualScores.SpeechRateScore != 20 {
		t.Fatalf("expected NaN rates excluded from mean, got score %d", result.IndividualScores.SpeechRateScore)
	}
	if result.Details.AvgSpeechRate != 5.5 {
		t.Fatalf("expected average 5.5, got %v", result.Details.AvgSpeechRate)
	}

	allNaN := []voicescore.Segment{{SyllablesPerSecond: math.NaN()}}
	result = voicescore.Score(voicescore.PauseAnalysis{PauseRatio: 10}, allNaN)
	if result.IndividualScores.SpeechRateScore != 0 {
		t.Fatalf("expected all-NaN average to score 0, got %d", result.IndividualScores.SpeechRateScore)
	}
	if result.Details.AvgSpeechRate != 0 {
		t.Fatalf("expected all-NaN average reported as 0, got %v", result.Details.AvgSpeechRate)
	}
}

func TestPitchRange(t *testing.T) {
	low, high := voicescore.PitchRange("male")
	if low != 75 || high != 300 {
		t.Fatalf("unexpected male pitch range: %v-%v", low, high)
	}
	low, high = voicescore.PitchRange("female")
	if low != 100 || high != 500 {
		t.Fatalf("unexpected female pitch range: %v-%v", low, high)
	}
}
