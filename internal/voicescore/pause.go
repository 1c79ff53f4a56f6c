package voicescore

import "fmt"

// Pause grade labels, per the delivery-quality thresholds the service was
// calibrated against.
const (
	GradeExcellent = "우수"
	GradeAverage   = "보통"
	GradePoor      = "미흡"
)

// AnalyzePauses measures the silence structure of the waveform. A silence run
// begins at the first frame whose RMS falls below the energy threshold and is
// committed when a loud frame ends it; runs shorter than the minimum pause
// duration are discarded. A run still open at the end of the signal is
// flushed against the last frame's timestamp.
func AnalyzePauses(w Waveform, opts Options) (PauseAnalysis, error) {
	opts = opts.withDefaults()

	totalDuration := w.Duration()
	if totalDuration <= 0 {
		return PauseAnalysis{}, fmt.Errorf("%w: zero-duration signal", ErrInvalidInput)
	}

	profile := rmsProfile(w, opts.FrameLength, opts.HopLength)

	var (
		segments  []float64
		startTime = -1.0
	)
	for _, frame := range profile {
		isPause := frame.rms < opts.EnergyThreshold
		switch {
		case isPause && startTime < 0:
			startTime = frame.time
		case !isPause && startTime >= 0:
			if duration := frame.time - startTime; duration >= opts.MinPauseSeconds {
				segments = append(segments, duration)
			}
			startTime = -1
		}
	}
	if startTime >= 0 && len(profile) > 0 {
		if duration := profile[len(profile)-1].time - startTime; duration >= opts.MinPauseSeconds {
			segments = append(segments, duration)
		}
	}

	var pauseDuration float64
	for _, d := range segments {
		pauseDuration += d
	}
	ratio := pauseDuration / totalDuration * 100

	grade, description := gradePauseRatio(ratio)

	return PauseAnalysis{
		TotalDuration: totalDuration,
		PauseDuration: pauseDuration,
		PauseRatio:    ratio,
		PauseCount:    len(segments),
		Grade:         grade,
		Description:   description,
		PauseSegments: segments,
	}, nil
}

func gradePauseRatio(ratio float64) (grade, description string) {
	switch {
	case ratio <= 17:
		return GradeExcellent, "전달력이 높음 (논문 기준: 14.8%~15.9%)"
	case ratio < 25:
		return GradeAverage, "전달력 무난"
	default:
		return GradePoor, "전달력이 낮음 (논문 기준: 25.7%~28.0%)"
	}
}
