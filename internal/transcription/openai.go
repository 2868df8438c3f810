package transcription

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"voiceblog/internal/services"
	"voiceblog/internal/services/whisperx"
)

// OpenAIConfig configures the Whisper API provider.
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// OpenAI transcribes through the OpenAI audio transcription endpoint.
type OpenAI struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAI builds a Whisper API transcriber. BaseURL, when set, must include
// the /v1 prefix.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: whisperx.LanguageCode(cfg.Language),
	}
}

// Name identifies the provider in logs.
func (t *OpenAI) Name() string {
	return ProviderOpenAI + ":" + t.model
}

// Transcribe uploads audioPath. The Whisper API has no instruction channel
// beyond a short style prompt, so filler removal is limited to what the model
// does on its own.
func (t *OpenAI) Transcribe(ctx context.Context, audioPath string, diag io.Writer) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", services.Wrap(services.ErrNotFound, "transcribe", "read audio", audioPath, err)
	}
	if diag != nil {
		fmt.Fprintf(diag, "provider=%s file=%s\n", t.Name(), audioPath)
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Prompt:   "Clean, well punctuated paragraphs without filler words.",
		Language: t.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "openai request", "", err)
	}
	return resp.Text, nil
}

// HealthCheck confirms the key can read the configured model.
func (t *OpenAI) HealthCheck(ctx context.Context) error {
	if _, err := t.client.GetModel(ctx, t.model); err != nil {
		return fmt.Errorf("openai health: %w", err)
	}
	return nil
}
