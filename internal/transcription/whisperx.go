package transcription

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"voiceblog/internal/services"
	"voiceblog/internal/services/whisperx"
)

// WhisperX transcribes locally with WhisperX.
type WhisperX struct {
	service *whisperx.Service
}

// NewWhisperX wraps service as a transcriber.
func NewWhisperX(service *whisperx.Service) *WhisperX {
	return &WhisperX{service: service}
}

// Name identifies the provider in logs.
func (t *WhisperX) Name() string {
	return ProviderWhisperX + ":" + t.service.Model()
}

// Transcribe runs WhisperX in a scratch directory next to the audio file.
func (t *WhisperX) Transcribe(ctx context.Context, audioPath string, diag io.Writer) (string, error) {
	if err := t.service.Available(); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "transcribe", "whisperx", "", err)
	}
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), ".whisperx-")
	if err != nil {
		return "", fmt.Errorf("whisperx work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	text, err := t.service.Transcribe(ctx, audioPath, workDir, diag)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "", err)
	}
	return text, nil
}

// HealthCheck reports whether uvx resolves.
func (t *WhisperX) HealthCheck(context.Context) error {
	return t.service.Available()
}
