package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePersistence(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.EnergyThreshold >= 1 {
		return errors.New("scoring.energy_threshold must be below 1 (normalized RMS amplitude)")
	}
	if c.Scoring.HopLength > c.Scoring.FrameLength {
		return fmt.Errorf("scoring.hop_length (%d) must not exceed scoring.frame_length (%d)",
			c.Scoring.HopLength, c.Scoring.FrameLength)
	}
	switch c.Scoring.DefaultGender {
	case "male", "female":
	default:
		return fmt.Errorf("scoring.default_gender must be \"male\" or \"female\", got %q", c.Scoring.DefaultGender)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"s3.request_timeout":            c.S3.RequestTimeout,
		"ffmpeg.convert_timeout":        c.FFmpeg.ConvertTimeout,
		"whisper.transcribe_timeout":    c.Whisper.TranscribeTimeout,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
}

func (c *Config) validatePersistence() error {
	if c.MariaDB.Enabled && strings.TrimSpace(c.MariaDB.DSN) == "" {
		return errors.New("mariadb.dsn must be set when mariadb.enabled is true")
	}
	if c.MongoDB.Enabled && strings.TrimSpace(c.MongoDB.URI) == "" {
		return errors.New("mongodb.uri must be set when mongodb.enabled is true")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Channels != 1 {
		return errors.New("ffmpeg.channels must be 1: the scoring engine requires mono input")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive (seconds)", key)
		}
	}
	return nil
}
