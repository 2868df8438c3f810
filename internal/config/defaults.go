package config

const (
	defaultConfigPath                 = "~/.config/voiceblog/config.toml"
	defaultRoot                       = "."
	defaultInputDir                   = "input/audio-file"
	defaultOutputDir                  = "output"
	defaultStateDir                   = "~/.local/share/voiceblog"
	defaultLogFormat                  = "console"
	defaultLogLevel                   = "info"
	defaultLLMBaseURL                 = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                   = "google/gemini-2.5-flash"
	defaultLLMReferer                 = "https://github.com/voiceblog/voiceblog"
	defaultLLMTitle                   = "voiceblog"
	defaultLLMTimeoutSeconds          = 120
	geminiOpenAIBaseURL               = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	geminiDirectModel                 = "gemini-2.5-flash"
	defaultFFmpegBinary               = "ffmpeg"
	defaultPreprocessTimeoutSeconds   = 1800
	defaultTranscriptionProvider      = "llm"
	defaultTranscriptionTimeout       = 600
	defaultOpenAITranscriptionModel   = "whisper-1"
	defaultWhisperXModel              = "large-v3"
	defaultComposeProvider            = "llm"
	defaultComposeTimeoutSeconds      = 300
	defaultComposeMaxTokens           = 8192
	defaultComposeTemperature         = 0.7
	defaultComposeTopP                = 0.9
	defaultAnthropicModel             = "claude-sonnet-4-5"
	defaultNtfyTimeoutSeconds         = 10
	defaultMinArtifactBytes     int64 = 1
)

// DefaultFilters lists the preprocessing filters applied when none are configured,
// in the order ffmpeg applies them.
var DefaultFilters = []string{"mono", "silence", "noise", "normalize", "compress", "optimize"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root:      defaultRoot,
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Preprocess: Preprocess{
			FFmpegBinary:          defaultFFmpegBinary,
			Filters:               append([]string(nil), DefaultFilters...),
			SilenceThresholdDB:    -40,
			MinSilenceMillis:      500,
			SilencePaddingMillis:  300,
			NoiseReductionDB:      12,
			TargetLoudness:        -20,
			CompressorThresholdDB: -20,
			CompressorRatio:       4,
			CompressorAttackMs:    5,
			CompressorReleaseMs:   50,
			SampleRate:            16000,
			Bitrate:               "128k",
			TimeoutSeconds:        defaultPreprocessTimeoutSeconds,
		},
		Transcription: Transcription{
			Provider:       defaultTranscriptionProvider,
			TimeoutSeconds: defaultTranscriptionTimeout,
			OpenAIModel:    defaultOpenAITranscriptionModel,
			WhisperXModel:  defaultWhisperXModel,
		},
		Compose: Compose{
			Provider:       defaultComposeProvider,
			Temperature:    defaultComposeTemperature,
			TopP:           defaultComposeTopP,
			MaxTokens:      defaultComposeMaxTokens,
			TimeoutSeconds: defaultComposeTimeoutSeconds,
			AnthropicModel: defaultAnthropicModel,
		},
		Workflow: Workflow{
			MinArtifactBytes: defaultMinArtifactBytes,
			LockFolders:      true,
			RecordHistory:    true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
