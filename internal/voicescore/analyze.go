package voicescore

// Analyze runs the full acoustic pipeline over one waveform: pause analysis,
// segmented speech-rate estimation, and score aggregation. The same waveform
// and options always produce the same result.
func Analyze(w Waveform, opts Options) (*Analysis, error) {
	opts = opts.withDefaults()

	pause, err := AnalyzePauses(w, opts)
	if err != nil {
		return nil, err
	}

	segments := SegmentRates(w, opts)
	scores := Score(pause, segments)

	return &Analysis{
		Scores:     scores,
		SpeechRate: segments,
		Pause:      pause,
		Summary: Summary{
			TotalSegments: MeasurableSegments(segments),
			AvgSpeechRate: scores.Details.AvgSpeechRate,
			PauseRatio:    scores.Details.PauseRatio,
			TotalScore:    scores.TotalScore,
		},
		Gender: opts.Gender,
	}, nil
}
