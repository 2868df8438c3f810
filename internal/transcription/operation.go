package transcription

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"voiceblog/internal/services"
	"voiceblog/internal/stage"
)

type healthChecker interface {
	HealthCheck(context.Context) error
}

// Operation adapts a Transcriber to the stage operation contract.
type Operation struct {
	transcriber Transcriber
}

// NewOperation wraps t.
func NewOperation(t Transcriber) *Operation {
	return &Operation{transcriber: t}
}

// Invoke transcribes input and writes the transcript to output.
func (o *Operation) Invoke(ctx context.Context, input, output string, diag io.Writer) error {
	if o.transcriber == nil {
		return services.Wrap(services.ErrConfiguration, "transcribe", "invoke", "no transcriber configured", nil)
	}
	text, err := o.transcriber.Transcribe(ctx, input, diag)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return services.Wrap(services.ErrValidation, "transcribe", "result", "provider returned an empty transcript", nil)
	}
	if diag != nil {
		fmt.Fprintf(diag, "transcript: %d characters\n", len(text))
	}
	if err := os.WriteFile(output, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// HealthCheck delegates to the provider when it supports one.
func (o *Operation) HealthCheck(ctx context.Context) stage.Health {
	name := stage.Transcribe.String()
	if o.transcriber == nil {
		return stage.Unhealthy(name, "no transcriber configured")
	}
	checker, ok := o.transcriber.(healthChecker)
	if !ok {
		return stage.Healthy(name)
	}
	if err := checker.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}

// ValidateTranscript rejects transcripts that contain only whitespace.
func ValidateTranscript(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("%s holds no text", path)
	}
	return nil
}
