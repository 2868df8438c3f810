package transcription

import (
	"context"
	"fmt"
	"io"
	"os"

	"voiceblog/internal/services"
	"voiceblog/internal/services/llm"
)

// LLM transcribes by sending the audio inline to a multimodal chat model.
type LLM struct {
	client *llm.Client
}

// NewLLM wraps client as a transcriber.
func NewLLM(client *llm.Client) *LLM {
	return &LLM{client: client}
}

// Name identifies the provider in logs.
func (t *LLM) Name() string {
	return ProviderLLM + ":" + t.client.Model()
}

// Transcribe reads audioPath and asks the model for a redacted transcript.
func (t *LLM) Transcribe(ctx context.Context, audioPath string, diag io.Writer) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "transcribe", "read audio", audioPath, err)
	}
	format, mime := AudioFormat(audioPath)
	if diag != nil {
		fmt.Fprintf(diag, "provider=%s bytes=%d mime=%s\n", t.Name(), len(data), mime)
	}
	text, err := t.client.CompleteWithAudio(ctx, Prompt, llm.Audio{Data: data, Format: format}, llm.Params{})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "llm request", "", err)
	}
	return text, nil
}

// HealthCheck pings the chat endpoint.
func (t *LLM) HealthCheck(ctx context.Context) error {
	return t.client.HealthCheck(ctx)
}
