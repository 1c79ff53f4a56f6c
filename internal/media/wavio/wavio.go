// Package wavio loads RIFF/WAVE PCM files into the waveform representation
// the scoring engine consumes. Multi-channel audio is downmixed by averaging;
// samples are normalized to [-1, 1] using the source bit depth.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

// ErrMalformed marks WAV payloads the decoder cannot interpret.
var ErrMalformed = errors.New("malformed wav payload")

// DecodeFile loads a WAV file from disk.
func DecodeFile(path string) (voicescore.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return voicescore.Waveform{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a complete WAV stream into a mono waveform.
func Decode(r io.ReadSeeker) (voicescore.Waveform, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return voicescore.Waveform{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrMalformed)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return voicescore.Waveform{}, fmt.Errorf("%w: read pcm: %v", ErrMalformed, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return voicescore.Waveform{}, fmt.Errorf("%w: empty pcm payload", ErrMalformed)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return voicescore.Waveform{}, fmt.Errorf("%w: channel count %d", ErrMalformed, channels)
	}
	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return voicescore.Waveform{}, fmt.Errorf("%w: sample rate %d", ErrMalformed, sampleRate)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 {
		return voicescore.Waveform{}, fmt.Errorf("%w: unknown bit depth", ErrMalformed)
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}

	return voicescore.Waveform{Samples: samples, SampleRate: sampleRate}, nil
}
