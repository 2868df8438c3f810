package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here: a run that only preprocesses needs no API key, so missing keys are
// reported by preflight for the stages actually requested.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePreprocess(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateCompose(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.input_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validatePreprocess() error {
	for _, filter := range c.Preprocess.Filters {
		if !slices.Contains(DefaultFilters, filter) {
			return fmt.Errorf("preprocess.filters: unknown filter %q (valid: %s)", filter, strings.Join(DefaultFilters, ", "))
		}
	}
	if c.Preprocess.SilenceThresholdDB > 0 {
		return errors.New("preprocess.silence_threshold_db must be <= 0")
	}
	if c.Preprocess.MinSilenceMillis < 0 {
		return errors.New("preprocess.min_silence_ms must be >= 0")
	}
	if c.Preprocess.SilencePaddingMillis < 0 {
		return errors.New("preprocess.silence_padding_ms must be >= 0")
	}
	if c.Preprocess.TargetLoudness < -70 || c.Preprocess.TargetLoudness > -5 {
		return errors.New("preprocess.target_loudness must be between -70 and -5")
	}
	if c.Preprocess.CompressorRatio < 1 || c.Preprocess.CompressorRatio > 20 {
		return errors.New("preprocess.compressor_ratio must be between 1 and 20")
	}
	if c.Preprocess.NoiseReductionDB < 0 || c.Preprocess.NoiseReductionDB > 97 {
		return errors.New("preprocess.noise_reduction_db must be between 0 and 97")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case "llm", "openai", "whisperx":
	default:
		return fmt.Errorf("transcription.provider: unsupported value %q (valid: llm, openai, whisperx)", c.Transcription.Provider)
	}
	return nil
}

func (c *Config) validateCompose() error {
	switch c.Compose.Provider {
	case "llm", "anthropic":
	default:
		return fmt.Errorf("compose.provider: unsupported value %q (valid: llm, anthropic)", c.Compose.Provider)
	}
	if c.Compose.Temperature < 0 || c.Compose.Temperature > 2 {
		return errors.New("compose.temperature must be between 0 and 2")
	}
	if c.Compose.TopP < 0 || c.Compose.TopP > 1 {
		return errors.New("compose.top_p must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "success", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	for stage, level := range c.Logging.StageOverrides {
		switch stage {
		case "preprocess", "transcribe", "compose", "workflow":
		default:
			return fmt.Errorf("logging.stage_overrides: unknown stage %q", stage)
		}
		switch level {
		case "debug", "info", "success", "warn", "warning", "error":
		default:
			return fmt.Errorf("logging.stage_overrides.%s: unsupported level %q", stage, level)
		}
	}
	return nil
}

// CheckCredentials reports the first missing credential needed by the given
// stage names ("transcribe", "compose"). Preprocess needs none.
func (c *Config) CheckCredentials(stages ...string) error {
	for _, name := range stages {
		switch name {
		case "transcribe":
			switch c.Transcription.Provider {
			case "llm":
				if c.LLM.APIKey == "" {
					return errors.New("transcription requires an LLM API key: set OPENROUTER_API_KEY or GEMINI_API_KEY, or llm.api_key")
				}
			case "openai":
				if c.Transcription.OpenAIAPIKey == "" {
					return errors.New("transcription provider openai requires OPENAI_API_KEY or transcription.openai_api_key")
				}
			}
		case "compose":
			switch c.Compose.Provider {
			case "llm":
				if c.LLM.APIKey == "" {
					return errors.New("compose requires an LLM API key: set OPENROUTER_API_KEY or GEMINI_API_KEY, or llm.api_key")
				}
			case "anthropic":
				if c.Compose.AnthropicAPIKey == "" {
					return errors.New("compose provider anthropic requires ANTHROPIC_API_KEY or compose.anthropic_api_key")
				}
			}
		}
	}
	return nil
}
