package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services"
)

const (
	// DefaultBinary is the whisper executable looked up on PATH.
	DefaultBinary = "whisper"

	// DefaultModel balances Korean accuracy against CPU transcription time.
	DefaultModel = "base"

	// DefaultLanguage pins transcription to Korean instead of auto-detect.
	DefaultLanguage = "ko"

	defaultTranscribeTimeout = 10 * time.Minute
)

// Service wraps the Whisper CLI.
type Service struct {
	binary             string
	model              string
	language           string
	transcribeTimeout  time.Duration
	preserveOutputJSON bool
	commandRunner      func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service from the whisper configuration.
func NewService(cfg config.Whisper) *Service {
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	timeout := defaultTranscribeTimeout
	if cfg.TranscribeTimeout > 0 {
		timeout = time.Duration(cfg.TranscribeTimeout) * time.Second
	}
	return &Service{
		binary:             binary,
		model:              model,
		language:           language,
		transcribeTimeout:  timeout,
		preserveOutputJSON: cfg.PreserveOutputJSON,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Binary returns the configured whisper executable for health reporting.
func (s *Service) Binary() string {
	return s.binary
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.model
}

// Result contains the transcription output for one recording.
type Result struct {
	// Text is the full transcript with segment text joined and trimmed.
	Text string
	// JSONPath is the raw whisper JSON output file, empty once cleaned up.
	JSONPath string
	// RawJSON is the raw whisper output for persistence alongside the item.
	RawJSON string
}

// Transcribe runs whisper over a WAV file and returns the transcript.
// outputDir receives the whisper JSON output file, which is removed after
// parsing unless the service is configured to preserve it.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) (Result, error) {
	var result Result
	if source == "" {
		return result, services.Wrap(services.ErrValidation, "transcribe", "whisper", "source path is required", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return result, services.Wrap(services.ErrValidation, "transcribe", "whisper", "stat source", err)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrTransient, "transcribe", "whisper", "ensure output dir", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.transcribeTimeout)
	defer cancel()

	args := s.buildArgs(source, outputDir)
	if err := s.run(runCtx, s.binary, args...); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return result, services.Wrap(services.ErrTimeout, "transcribe", "whisper", "transcription timed out", err)
		}
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "run whisper", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "read whisper output", err)
	}
	text, err := parseTranscript(raw)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "parse whisper output", err)
	}

	result.Text = text
	result.RawJSON = string(raw)
	if s.preserveOutputJSON {
		result.JSONPath = jsonPath
	} else {
		os.Remove(jsonPath)
	}
	return result, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	return []string{
		source,
		"--model", s.model,
		"--language", s.language,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outputDir,
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

// Segment is one timed span of transcribed speech from the whisper output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperPayload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// parseTranscript prefers the top level text field and falls back to joining
// segment text when it is absent.
func parseTranscript(raw []byte) (string, error) {
	var payload whisperPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode whisper json: %w", err)
	}
	if text := strings.TrimSpace(payload.Text); text != "" {
		return text, nil
	}
	parts := make([]string, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// LoadSegments reads timed segments from a preserved whisper JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode whisper json: %w", err)
	}
	return payload.Segments, nil
}
