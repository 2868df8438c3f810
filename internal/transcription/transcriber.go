package transcription

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"voiceblog/internal/config"
	"voiceblog/internal/services"
	"voiceblog/internal/services/llm"
	"voiceblog/internal/services/whisperx"
)

// Provider names accepted by transcription.provider.
const (
	ProviderLLM      = "llm"
	ProviderOpenAI   = "openai"
	ProviderWhisperX = "whisperx"
)

// Prompt asks a multimodal model for a transcript with light redactions.
const Prompt = `Transcribe this recording, applying only these light edits:

- Drop filler words and verbal tics (um, uh, like, you know, basically and similar).
- Break the text into paragraphs where the topic changes, with a blank line between paragraphs.
- Keep the speaker's own words, meaning and conversational tone.
- Do not reword anything beyond removing fillers and do not add anything that was not said.

Reply with the transcript text only, without commentary, headings or markup.`

// Transcriber converts an audio file into transcript text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string, diag io.Writer) (string, error)
}

// New builds the transcriber selected by cfg.Transcription.Provider.
func New(cfg *config.Config) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init", "configuration unavailable", nil)
	}
	switch cfg.Transcription.Provider {
	case "", ProviderLLM:
		llmCfg := cfg.TranscriptionLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
		})
		return NewLLM(client), nil
	case ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:   cfg.Transcription.OpenAIAPIKey,
			BaseURL:  cfg.Transcription.OpenAIBaseURL,
			Model:    cfg.Transcription.OpenAIModel,
			Language: cfg.Transcription.Language,
		}), nil
	case ProviderWhisperX:
		return NewWhisperX(whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.WhisperXModel,
			CUDAEnabled: cfg.Transcription.WhisperXCUDAEnabled,
			Language:    cfg.Transcription.Language,
		})), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "init",
			fmt.Sprintf("unknown provider %q", cfg.Transcription.Provider), nil)
	}
}

// audioFormats maps file extensions to the container name and MIME type of
// the audio payload.
var audioFormats = map[string]struct {
	format string
	mime   string
}{
	".mp3":  {"mp3", "audio/mpeg"},
	".wav":  {"wav", "audio/wav"},
	".m4a":  {"m4a", "audio/mp4"},
	".aac":  {"aac", "audio/aac"},
	".flac": {"flac", "audio/flac"},
	".ogg":  {"ogg", "audio/ogg"},
	".webm": {"webm", "audio/webm"},
}

// AudioFormat returns the container name and MIME type for path, falling
// back to mp3 for unknown extensions.
func AudioFormat(path string) (string, string) {
	if f, ok := audioFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f.format, f.mime
	}
	return "mp3", "audio/mpeg"
}
