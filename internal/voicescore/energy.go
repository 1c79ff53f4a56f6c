package voicescore

import "math"

// frameEnergy is one RMS measurement anchored at the frame's start time.
type frameEnergy struct {
	time float64
	rms  float64
}

// rmsProfile computes framed RMS energy over the waveform. Frame i covers
// samples [i*hop, i*hop+frameLength) clipped to the signal, and is anchored
// at time i*hop/sampleRate. An empty waveform yields an empty profile.
func rmsProfile(w Waveform, frameLength, hopLength int) []frameEnergy {
	n := len(w.Samples)
	if n == 0 || w.SampleRate <= 0 {
		return nil
	}

	numFrames := (n + hopLength - 1) / hopLength
	profile := make([]frameEnergy, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * hopLength
		end := start + frameLength
		if end > n {
			end = n
		}
		var sum float64
		for _, s := range w.Samples[start:end] {
			sum += s * s
		}
		rms := math.Sqrt(sum / float64(end-start))
		profile = append(profile, frameEnergy{
			time: float64(start) / float64(w.SampleRate),
			rms:  rms,
		})
	}
	return profile
}
