package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services"
)

const (
	// DefaultBinary is the ffmpeg executable looked up on PATH.
	DefaultBinary = "ffmpeg"

	// DefaultSampleRate matches the rate the scorer and whisper expect.
	DefaultSampleRate = 16000

	defaultConvertTimeout = 5 * time.Minute
)

// Service wraps the ffmpeg binary for audio conversion.
type Service struct {
	binary         string
	sampleRate     int
	channels       int
	convertTimeout time.Duration
	commandRunner  func(ctx context.Context, name string, args ...string) error
}

// NewService creates a conversion service from the ffmpeg configuration.
func NewService(cfg config.FFmpeg) *Service {
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	channels := cfg.Channels
	if channels <= 0 {
		channels = 1
	}
	timeout := defaultConvertTimeout
	if cfg.ConvertTimeout > 0 {
		timeout = time.Duration(cfg.ConvertTimeout) * time.Second
	}
	return &Service{
		binary:         binary,
		sampleRate:     sampleRate,
		channels:       channels,
		convertTimeout: timeout,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Binary returns the configured ffmpeg executable for health reporting.
func (s *Service) Binary() string {
	return s.binary
}

// ConvertToWAV transcodes source into a PCM WAV file next to the requested
// destination path. The source container does not matter as long as ffmpeg
// can demux it (webm uploads are the common case).
func (s *Service) ConvertToWAV(ctx context.Context, source, dest string) error {
	if source == "" {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "source path is required", nil)
	}
	if dest == "" {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "destination path is required", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "convert", "ffmpeg", "stat source", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "convert", "ffmpeg", "ensure destination directory", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.convertTimeout)
	defer cancel()

	args := s.buildConvertArgs(source, dest)
	if err := s.run(runCtx, s.binary, args...); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "convert", "ffmpeg", "conversion timed out", err)
		}
		return services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "transcode to wav", err)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "convert", "ffmpeg", "conversion produced no output", err)
	}
	return nil
}

// WAVPath returns the conversion destination for a source file in workDir.
func WAVPath(workDir, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(workDir, base+".wav")
}

func (s *Service) buildConvertArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(s.channels),
		"-ar", strconv.Itoa(s.sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
