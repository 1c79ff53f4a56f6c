package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeS3()
	c.normalizeFFmpeg()
	if err := c.normalizeWhisper(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeScoring()
	c.normalizeMongoDB()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeS3() {
	if c.S3.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.S3.AccessKeyID = strings.TrimSpace(value)
		}
	}
	if c.S3.SecretKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.S3.SecretKey = strings.TrimSpace(value)
		}
	}
	if c.S3.Bucket == "" {
		if value, ok := os.LookupEnv("S3_BUCKET_NAME"); ok {
			c.S3.Bucket = strings.TrimSpace(value)
		}
	}
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	if c.S3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.S3.Region = strings.TrimSpace(value)
		} else {
			c.S3.Region = defaultS3Region
		}
	}
	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
	if c.S3.RequestTimeout <= 0 {
		c.S3.RequestTimeout = defaultS3RequestTimeout
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if c.FFmpeg.SampleRate <= 0 {
		c.FFmpeg.SampleRate = defaultFFmpegSampleRate
	}
	if c.FFmpeg.Channels <= 0 {
		c.FFmpeg.Channels = defaultFFmpegChannels
	}
	if c.FFmpeg.ConvertTimeout <= 0 {
		c.FFmpeg.ConvertTimeout = defaultConvertTimeout
	}
}

func (c *Config) normalizeWhisper() error {
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = defaultWhisperBinary
	}
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.TrimSpace(c.Whisper.Language)
	if c.Whisper.Language == "" {
		c.Whisper.Language = defaultWhisperLanguage
	}
	if _, err := language.Parse(c.Whisper.Language); err != nil {
		return fmt.Errorf("whisper.language: %q is not a valid language tag: %w", c.Whisper.Language, err)
	}
	if c.Whisper.TranscribeTimeout <= 0 {
		c.Whisper.TranscribeTimeout = defaultTranscribeTimeout
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeScoring() {
	if c.Scoring.EnergyThreshold <= 0 {
		c.Scoring.EnergyThreshold = defaultEnergyThreshold
	}
	if c.Scoring.MinPauseSeconds <= 0 {
		c.Scoring.MinPauseSeconds = defaultMinPauseSeconds
	}
	if c.Scoring.FrameLength <= 0 {
		c.Scoring.FrameLength = defaultFrameLength
	}
	if c.Scoring.HopLength <= 0 {
		c.Scoring.HopLength = defaultHopLength
	}
	if c.Scoring.SegmentSeconds <= 0 {
		c.Scoring.SegmentSeconds = defaultSegmentSeconds
	}
	c.Scoring.DefaultGender = strings.ToLower(strings.TrimSpace(c.Scoring.DefaultGender))
	if c.Scoring.DefaultGender == "" {
		c.Scoring.DefaultGender = defaultGender
	}
}

func (c *Config) normalizeMongoDB() {
	c.MongoDB.URI = strings.TrimSpace(c.MongoDB.URI)
	c.MongoDB.Database = strings.TrimSpace(c.MongoDB.Database)
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = defaultMongoDatabase
	}
	c.MongoDB.Collection = strings.TrimSpace(c.MongoDB.Collection)
	if c.MongoDB.Collection == "" {
		c.MongoDB.Collection = defaultMongoCollection
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
