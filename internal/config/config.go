package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// S3 contains configuration for retrieving interview recordings.
type S3 struct {
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKeyID    string `toml:"access_key_id"`
	SecretKey      string `toml:"secret_access_key"`
	Endpoint       string `toml:"endpoint"`
	RequestTimeout int    `toml:"request_timeout"`
}

// FFmpeg contains configuration for audio transcoding.
type FFmpeg struct {
	Binary         string `toml:"binary"`
	SampleRate     int    `toml:"sample_rate"`
	Channels       int    `toml:"channels"`
	ConvertTimeout int    `toml:"convert_timeout"`
}

// Whisper contains configuration for speech-to-text transcription.
type Whisper struct {
	Binary             string `toml:"binary"`
	Model              string `toml:"model"`
	Language           string `toml:"language"`
	TranscribeTimeout  int    `toml:"transcribe_timeout"`
	PreserveOutputJSON bool   `toml:"preserve_output_json"`
}

// LLM contains connection settings for the rubric evaluation model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scoring contains the acoustic scoring parameters. The energy threshold is
// an absolute RMS value, not normalized to the recording's loudness; keep it
// visible here so callers can calibrate per deployment.
type Scoring struct {
	EnergyThreshold  float64 `toml:"energy_threshold"`
	MinPauseSeconds  float64 `toml:"min_pause_seconds"`
	FrameLength      int     `toml:"frame_length"`
	HopLength        int     `toml:"hop_length"`
	SegmentSeconds   float64 `toml:"segment_seconds"`
	DefaultGender    string  `toml:"default_gender"`
	PersistDebugJSON bool    `toml:"persist_debug_json"`
}

// MariaDB contains configuration for the category evaluation store.
type MariaDB struct {
	Enabled bool   `toml:"enabled"`
	DSN     string `toml:"dsn"`
}

// MongoDB contains configuration for the score document store.
type MongoDB struct {
	Enabled    bool   `toml:"enabled"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ko-analysis.
//
// Configuration sections by subsystem:
//   - Paths: work/log directories and API bind address
//   - S3: recording retrieval from object storage
//   - FFmpeg: transcoding to analysis-ready WAV
//   - Whisper: speech-to-text transcription
//   - LLM: rubric evaluation model connection
//   - Scoring: acoustic scoring engine parameters
//   - MariaDB / MongoDB: result persistence targets
//   - Workflow: daemon polling intervals and timeouts
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	S3       S3       `toml:"s3"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Whisper  Whisper  `toml:"whisper"`
	LLM      LLM      `toml:"llm"`
	Scoring  Scoring  `toml:"scoring"`
	MariaDB  MariaDB  `toml:"mariadb"`
	MongoDB  MongoDB  `toml:"mongodb"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ko-analysis/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ko-analysis.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
