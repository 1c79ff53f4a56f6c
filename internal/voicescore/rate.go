package voicescore

import "math"

// minSegmentSeconds is the shortest window worth measuring; trailing slivers
// below this are dropped rather than reported as unstable rates.
const minSegmentSeconds = 0.1

// SegmentRates splits the waveform into contiguous windows of the configured
// segment duration (final window clipped to the signal) and estimates the
// syllable rate of each as onset count over actual window duration. Windows
// that cannot be measured carry NaN; callers exclude those from averages.
func SegmentRates(w Waveform, opts Options) []Segment {
	opts = opts.withDefaults()

	totalDuration := w.Duration()
	if totalDuration <= 0 {
		return nil
	}

	sr := float64(w.SampleRate)
	numSegments := int(math.Ceil(totalDuration / opts.SegmentSeconds))

	segments := make([]Segment, 0, numSegments)
	for i := 0; i < numSegments; i++ {
		startSample := int(float64(i) * opts.SegmentSeconds * sr)
		endSample := int(math.Min(float64(i+1)*opts.SegmentSeconds*sr, float64(len(w.Samples))))
		if startSample >= endSample {
			continue
		}
		segDuration := float64(endSample-startSample) / sr
		if segDuration <= minSegmentSeconds {
			continue
		}

		window := Waveform{Samples: w.Samples[startSample:endSample], SampleRate: w.SampleRate}
		rate := syllablesPerSecond(window, opts)

		segments = append(segments, Segment{
			SyllablesPerSecond: rate,
			StartTime:          round1(float64(i) * opts.SegmentSeconds),
			EndTime:            round1(math.Min(float64(i+1)*opts.SegmentSeconds, totalDuration)),
		})
	}
	return segments
}

// syllablesPerSecond counts onset peaks in the window and divides by its
// duration. NaN is returned only when no meaningful measurement exists.
func syllablesPerSecond(w Waveform, opts Options) float64 {
	duration := w.Duration()
	if duration <= 0 {
		return math.NaN()
	}
	envelope := onsetStrength(w, opts)
	if envelope == nil {
		return math.NaN()
	}
	onsets := pickPeaks(envelope, onsetMinGapFrames(w.SampleRate, opts.HopLength))
	return float64(onsets) / duration
}

// onsetStrength builds a half-wave-rectified log-energy flux envelope over
// the same RMS framing the pause detector uses. Rising energy between
// consecutive frames marks likely syllable onsets.
func onsetStrength(w Waveform, opts Options) []float64 {
	profile := rmsProfile(w, opts.FrameLength, opts.HopLength)
	if len(profile) == 0 {
		return nil
	}

	const dbFloor = 1e-10
	db := make([]float64, len(profile))
	for i, frame := range profile {
		power := frame.rms * frame.rms
		if power < dbFloor {
			power = dbFloor
		}
		db[i] = 10 * math.Log10(power)
	}

	flux := make([]float64, len(db))
	for i := 1; i < len(db); i++ {
		if rise := db[i] - db[i-1]; rise > 0 {
			flux[i] = rise
		}
	}
	return flux
}

// pickPeaks counts local maxima of the envelope that exceed its mean, with a
// minimum spacing between accepted peaks.
func pickPeaks(envelope []float64, minGap int) int {
	if len(envelope) < 3 {
		return 0
	}

	var sum float64
	for _, v := range envelope {
		sum += v
	}
	mean := sum / float64(len(envelope))

	count := 0
	lastPeak := -minGap - 1
	for i := 1; i < len(envelope)-1; i++ {
		v := envelope[i]
		if v <= mean {
			continue
		}
		if v < envelope[i-1] || v <= envelope[i+1] {
			continue
		}
		if i-lastPeak <= minGap {
			continue
		}
		count++
		lastPeak = i
	}
	return count
}

// onsetMinGapFrames converts the 30ms refractory spacing into frames.
func onsetMinGapFrames(sampleRate, hopLength int) int {
	if sampleRate <= 0 || hopLength <= 0 {
		return 1
	}
	gap := int(0.03 * float64(sampleRate) / float64(hopLength))
	if gap < 1 {
		gap = 1
	}
	return gap
}
