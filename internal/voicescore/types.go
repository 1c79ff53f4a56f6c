package voicescore

import (
	"errors"
	"math"
)

// ErrInvalidInput marks waveforms the engine cannot score, such as empty or
// zero-duration input.
var ErrInvalidInput = errors.New("invalid waveform")

// Default analysis parameters. These mirror the calibrated service defaults;
// callers override them through Options.
const (
	DefaultEnergyThreshold = 0.01
	DefaultMinPauseSeconds = 0.5
	DefaultFrameLength     = 2048
	DefaultHopLength       = 512
	DefaultSegmentSeconds  = 5.0
)

// Waveform is a mono PCM signal with samples normalized to [-1, 1].
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the waveform length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Options control a single analysis run. Zero values fall back to defaults.
type Options struct {
	// EnergyThreshold is the absolute RMS level below which a frame counts
	// as silence. Not normalized to the recording's loudness.
	EnergyThreshold float64
	// MinPauseSeconds is the minimum silence run length counted as a pause.
	MinPauseSeconds float64
	FrameLength     int
	HopLength       int
	// SegmentSeconds is the speech-rate window length.
	SegmentSeconds float64
	// Gender is carried through to the result untouched; it does not alter
	// the scoring math.
	Gender string
}

func (o Options) withDefaults() Options {
	if o.EnergyThreshold <= 0 {
		o.EnergyThreshold = DefaultEnergyThreshold
	}
	if o.MinPauseSeconds <= 0 {
		o.MinPauseSeconds = DefaultMinPauseSeconds
	}
	if o.FrameLength <= 0 {
		o.FrameLength = DefaultFrameLength
	}
	if o.HopLength <= 0 {
		o.HopLength = DefaultHopLength
	}
	if o.SegmentSeconds <= 0 {
		o.SegmentSeconds = DefaultSegmentSeconds
	}
	return o
}

// PauseAnalysis describes the silence structure of a recording. Durations are
// seconds; PauseRatio is a percentage of the total duration.
type PauseAnalysis struct {
	TotalDuration float64   `json:"total_duration"`
	PauseDuration float64   `json:"pause_duration"`
	PauseRatio    float64   `json:"pause_ratio"`
	PauseCount    int       `json:"pause_count"`
	Grade         string    `json:"grade"`
	Description   string    `json:"description"`
	PauseSegments []float64 `json:"pause_segments"`
}

// Segment is one speech-rate window. SyllablesPerSecond is NaN when the rate
// could not be measured for this window.
type Segment struct {
	SyllablesPerSecond float64 `json:"syllables_per_second"`
	StartTime          float64 `json:"start_time"`
	EndTime            float64 `json:"end_time"`
}

// IndividualScores carries the two component scores.
type IndividualScores struct {
	PauseScore      int `json:"pause_score"`
	SpeechRateScore int `json:"speech_rate_score"`
}

// ScoreDetails echoes the measurements behind the score, rounded to two
// decimals.
type ScoreDetails struct {
	PauseRatio    float64 `json:"pause_ratio"`
	AvgSpeechRate float64 `json:"avg_speech_rate"`
}

// ScoreResult is the aggregate 0-40 voice score.
type ScoreResult struct {
	TotalScore       int              `json:"total_score"`
	IndividualScores IndividualScores `json:"individual_scores"`
	Details          ScoreDetails     `json:"details"`
}

// Summary condenses an analysis for persistence and API responses.
type Summary struct {
	TotalSegments int     `json:"total_segments"`
	AvgSpeechRate float64 `json:"avg_speech_rate"`
	PauseRatio    float64 `json:"pause_ratio"`
	TotalScore    int     `json:"total_score"`
}

// Analysis is the full engine output for one recording.
type Analysis struct {
	Scores     ScoreResult   `json:"scores_result"`
	SpeechRate []Segment     `json:"speech_rate_result"`
	Pause      PauseAnalysis `json:"pause_analysis_result"`
	Summary    Summary       `json:"summary"`
	Gender     string        `json:"gender"`
}

// PitchRange returns the F0 search band in Hz for the given gender. It is
// exposed for future pitch-based features and is not consulted by the
// current scoring math.
func PitchRange(gender string) (low, high float64) {
	if gender == "male" || gender == "Male" || gender == "MALE" {
		return 75, 300
	}
	return 100, 500
}

func round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return math.Round(value*100) / 100
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}
