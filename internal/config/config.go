package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory layout the pipeline reads from and writes to.
type Paths struct {
	Root      string `toml:"root"`
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// LLM contains shared LLM connection settings used by transcription and composition.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Preprocess contains the ffmpeg filter chain applied before transcription.
type Preprocess struct {
	FFmpegBinary          string   `toml:"ffmpeg_binary"`
	Filters               []string `toml:"filters"`
	SilenceThresholdDB    float64  `toml:"silence_threshold_db"`
	MinSilenceMillis      int      `toml:"min_silence_ms"`
	SilencePaddingMillis  int      `toml:"silence_padding_ms"`
	NoiseReductionDB      float64  `toml:"noise_reduction_db"`
	TargetLoudness        float64  `toml:"target_loudness"`
	CompressorThresholdDB float64  `toml:"compressor_threshold_db"`
	CompressorRatio       float64  `toml:"compressor_ratio"`
	CompressorAttackMs    float64  `toml:"compressor_attack_ms"`
	CompressorReleaseMs   float64  `toml:"compressor_release_ms"`
	SampleRate            int      `toml:"sample_rate"`
	Bitrate               string   `toml:"bitrate"`
	TimeoutSeconds        int      `toml:"timeout_seconds"`
}

// Transcription selects and configures the speech-to-text provider.
//
// Providers:
//   - "llm": multimodal chat completion with inline audio (uses [llm])
//   - "openai": Whisper transcription endpoint
//   - "whisperx": local WhisperX run through uvx
type Transcription struct {
	Provider            string `toml:"provider"`
	Model               string `toml:"model"`
	Language            string `toml:"language"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	OpenAIAPIKey        string `toml:"openai_api_key"`
	OpenAIBaseURL       string `toml:"openai_base_url"`
	OpenAIModel         string `toml:"openai_model"`
	WhisperXModel       string `toml:"whisperx_model"`
	WhisperXCUDAEnabled bool   `toml:"whisperx_cuda_enabled"`
}

// Compose configures blog post generation.
type Compose struct {
	Provider        string  `toml:"provider"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	TopP            float64 `toml:"top_p"`
	MaxTokens       int     `toml:"max_tokens"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	AnthropicAPIKey string  `toml:"anthropic_api_key"`
	AnthropicModel  string  `toml:"anthropic_model"`
}

// Workflow contains orchestration knobs.
type Workflow struct {
	// IsolateStages runs each stage as a child voiceblog process instead of
	// in-process.
	IsolateStages bool `toml:"isolate_stages"`
	// MinArtifactBytes is the smallest file accepted as a completed artifact.
	MinArtifactBytes int64 `toml:"min_artifact_bytes"`
	// LockFolders takes an advisory lock on the output folder for the run.
	LockFolders bool `toml:"lock_folders"`
	// RecordHistory appends every run to the SQLite ledger under state_dir.
	RecordHistory bool `toml:"record_history"`
}

// Notifications configures ntfy delivery of run outcomes.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for voiceblog.
//
// Configuration sections by subsystem:
//   - Paths: project root plus input/output/state/log directories
//   - LLM: shared chat completion connection settings
//   - Preprocess: ffmpeg filter chain
//   - Transcription: speech-to-text provider selection
//   - Compose: blog generation provider and sampling settings
//   - Workflow: isolation, artifact validation, locking, history
//   - Notifications: ntfy topic for run outcomes
//   - Logging: log format, level, and per-stage overrides
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Preprocess    Preprocess    `toml:"preprocess"`
	Transcription Transcription `toml:"transcription"`
	Compose       Compose       `toml:"compose"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`

	llmKeySource string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in the
// working directory is read first so credentials kept there behave like
// process environment variables. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

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

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voiceblog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// InputRoot is the directory holding one sub-folder per recording.
func (c *Config) InputRoot() string {
	return c.resolve(c.Paths.InputDir)
}

// OutputRoot is the directory holding one sub-folder of artifacts per recording.
func (c *Config) OutputRoot() string {
	return c.resolve(c.Paths.OutputDir)
}

// HistoryPath returns the SQLite ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Paths.Root, dir)
}

// EnsureDirectories creates the state and log directories. Input and output
// roots are left alone: a missing input root is an operator error and output
// folders are created per job.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for preprocessing.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Preprocess.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
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

// LLMConfig contains common LLM settings used across features.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the shared LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}

// TranscriptionLLM returns the LLM settings for audio transcription. The
// transcription model and timeout override the shared ones when set.
func (c *Config) TranscriptionLLM() LLMConfig {
	cfg := c.GetLLM()
	if model := strings.TrimSpace(c.Transcription.Model); model != "" {
		cfg.Model = model
	}
	if c.Transcription.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = c.Transcription.TimeoutSeconds
	}
	return cfg
}

// ComposeLLM returns the LLM settings for blog composition.
func (c *Config) ComposeLLM() LLMConfig {
	cfg := c.GetLLM()
	if model := strings.TrimSpace(c.Compose.Model); model != "" {
		cfg.Model = model
	}
	if c.Compose.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = c.Compose.TimeoutSeconds
	}
	return cfg
}

// LLMKeySource names where the shared LLM key came from ("config", an
// environment variable name, or "" when unset).
func (c *Config) LLMKeySource() string {
	return c.llmKeySource
}
