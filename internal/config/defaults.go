package config

const (
	defaultWorkDir            = "~/.local/share/ko-analysis/work"
	defaultLogDir             = "~/.local/share/ko-analysis/logs"
	defaultAPIBind            = "127.0.0.1:8590"
	defaultS3Region           = "ap-northeast-2"
	defaultS3RequestTimeout   = 60
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFmpegSampleRate   = 16000
	defaultFFmpegChannels     = 1
	defaultConvertTimeout     = 300
	defaultWhisperBinary      = "whisper"
	defaultWhisperModel       = "small"
	defaultWhisperLanguage    = "ko"
	defaultTranscribeTimeout  = 600
	defaultLLMBaseURL         = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel           = "gpt-4o-mini"
	defaultLLMTimeoutSeconds  = 60
	defaultEnergyThreshold    = 0.01
	defaultMinPauseSeconds    = 0.5
	defaultFrameLength        = 2048
	defaultHopLength          = 512
	defaultSegmentSeconds     = 1.0
	defaultGender             = "female"
	defaultMongoDatabase      = "interview"
	defaultMongoCollection    = "analysis_scores"
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		S3: S3{
			Region:         defaultS3Region,
			RequestTimeout: defaultS3RequestTimeout,
		},
		FFmpeg: FFmpeg{
			Binary:         defaultFFmpegBinary,
			SampleRate:     defaultFFmpegSampleRate,
			Channels:       defaultFFmpegChannels,
			ConvertTimeout: defaultConvertTimeout,
		},
		Whisper: Whisper{
			Binary:            defaultWhisperBinary,
			Model:             defaultWhisperModel,
			Language:          defaultWhisperLanguage,
			TranscribeTimeout: defaultTranscribeTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Scoring: Scoring{
			EnergyThreshold: defaultEnergyThreshold,
			MinPauseSeconds: defaultMinPauseSeconds,
			FrameLength:     defaultFrameLength,
			HopLength:       defaultHopLength,
			SegmentSeconds:  defaultSegmentSeconds,
			DefaultGender:   defaultGender,
		},
		MongoDB: MongoDB{
			Database:   defaultMongoDatabase,
			Collection: defaultMongoCollection,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
