// Package voicescore implements the acoustic scoring engine for Korean
// interview answers.
//
// The engine is deterministic and pure: it consumes a mono waveform and
// produces a 0-40 voice score from two measurements, the pause ratio (share
// of the recording spent in silence runs of at least the minimum pause
// duration) and the average syllable rate (onset counts over fixed-duration
// segments). Grades and score bands follow the Korean speech-delivery
// research thresholds the service was calibrated against.
//
// The package holds no shared state; concurrent calls on distinct waveforms
// are safe.
package voicescore
