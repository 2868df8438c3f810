package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizePreprocess()
	c.normalizeTranscription()
	c.normalizeCompose()
	if c.Workflow.MinArtifactBytes <= 0 {
		c.Workflow.MinArtifactBytes = defaultMinArtifactBytes
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = defaultRoot
	}
	if c.Paths.Root, err = expandPath(c.Paths.Root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	c.Paths.InputDir = strings.TrimSpace(c.Paths.InputDir)
	if c.Paths.InputDir == "" {
		c.Paths.InputDir = defaultInputDir
	}
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.HasPrefix(c.Paths.InputDir, "~") {
		if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
			return fmt.Errorf("paths.input_dir: %w", err)
		}
	}
	if strings.HasPrefix(c.Paths.OutputDir, "~") {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.APIKey != "" {
		c.llmKeySource = "config"
	} else {
		for _, name := range []string{"VOICEBLOG_LLM_API_KEY", "OPENROUTER_API_KEY", "GEMINI_API_KEY"} {
			if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				c.llmKeySource = name
				break
			}
		}
	}
	// A bare Gemini key cannot authenticate against OpenRouter; route it to
	// Google's OpenAI-compatible endpoint unless the operator chose a URL.
	if c.llmKeySource == "GEMINI_API_KEY" && (c.LLM.BaseURL == "" || c.LLM.BaseURL == defaultLLMBaseURL) {
		c.LLM.BaseURL = geminiOpenAIBaseURL
		if c.LLM.Model == "" || c.LLM.Model == defaultLLMModel {
			c.LLM.Model = geminiDirectModel
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizePreprocess() {
	c.Preprocess.FFmpegBinary = strings.TrimSpace(c.Preprocess.FFmpegBinary)
	if c.Preprocess.FFmpegBinary == "" {
		c.Preprocess.FFmpegBinary = defaultFFmpegBinary
	}
	filters := make([]string, 0, len(c.Preprocess.Filters))
	seen := make(map[string]struct{}, len(c.Preprocess.Filters))
	for _, f := range c.Preprocess.Filters {
		normalized := strings.ToLower(strings.TrimSpace(f))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		filters = append(filters, normalized)
	}
	c.Preprocess.Filters = filters
	c.Preprocess.Bitrate = strings.TrimSpace(c.Preprocess.Bitrate)
	if c.Preprocess.Bitrate == "" {
		c.Preprocess.Bitrate = "128k"
	}
	if c.Preprocess.SampleRate <= 0 {
		c.Preprocess.SampleRate = 16000
	}
	if c.Preprocess.TimeoutSeconds <= 0 {
		c.Preprocess.TimeoutSeconds = defaultPreprocessTimeoutSeconds
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaultTranscriptionProvider
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
	c.Transcription.OpenAIAPIKey = strings.TrimSpace(c.Transcription.OpenAIAPIKey)
	if c.Transcription.OpenAIAPIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.OpenAIAPIKey = strings.TrimSpace(value)
		}
	}
	c.Transcription.OpenAIBaseURL = strings.TrimSpace(c.Transcription.OpenAIBaseURL)
	c.Transcription.OpenAIModel = strings.TrimSpace(c.Transcription.OpenAIModel)
	if c.Transcription.OpenAIModel == "" {
		c.Transcription.OpenAIModel = defaultOpenAITranscriptionModel
	}
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
}

func (c *Config) normalizeCompose() {
	c.Compose.Provider = strings.ToLower(strings.TrimSpace(c.Compose.Provider))
	if c.Compose.Provider == "" {
		c.Compose.Provider = defaultComposeProvider
	}
	c.Compose.Model = strings.TrimSpace(c.Compose.Model)
	if c.Compose.MaxTokens <= 0 {
		c.Compose.MaxTokens = defaultComposeMaxTokens
	}
	if c.Compose.TimeoutSeconds <= 0 {
		c.Compose.TimeoutSeconds = defaultComposeTimeoutSeconds
	}
	c.Compose.AnthropicAPIKey = strings.TrimSpace(c.Compose.AnthropicAPIKey)
	if c.Compose.AnthropicAPIKey == "" {
		if value, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			c.Compose.AnthropicAPIKey = strings.TrimSpace(value)
		}
	}
	c.Compose.AnthropicModel = strings.TrimSpace(c.Compose.AnthropicModel)
	if c.Compose.AnthropicModel == "" {
		c.Compose.AnthropicModel = defaultAnthropicModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.StageOverrides) > 0 {
		normalized := make(map[string]string, len(c.Logging.StageOverrides))
		for stage, level := range c.Logging.StageOverrides {
			key := strings.ToLower(strings.TrimSpace(stage))
			if key == "" {
				continue
			}
			normalized[key] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.StageOverrides = normalized
	}
}
