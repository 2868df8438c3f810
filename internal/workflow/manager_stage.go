package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"voiceblog/internal/compose"
	"voiceblog/internal/job"
	"voiceblog/internal/logging"
	"voiceblog/internal/preprocess"
	"voiceblog/internal/services"
	"voiceblog/internal/stage"
	"voiceblog/internal/stageexec"
	"voiceblog/internal/transcription"
)

// definition binds kind to the artifact paths of j.
func (m *Manager) definition(kind stage.Kind, j job.Job) stage.Definition {
	switch kind {
	case stage.Preprocess:
		return m.definitionFor(kind, j.RawAudio, j.ProcessedAudio)
	case stage.Transcribe:
		return m.definitionFor(kind, j.ProcessedAudio, j.Transcript)
	default:
		return m.definitionFor(kind, j.Transcript, j.BlogPost)
	}
}

func (m *Manager) definitionFor(kind stage.Kind, input, output string) stage.Definition {
	def := stage.Definition{
		Kind:      kind,
		Input:     input,
		Output:    output,
		Operation: m.stages.Operation(kind),
	}
	switch kind {
	case stage.Preprocess:
		def.Timeout = seconds(m.cfg.Preprocess.TimeoutSeconds)
		def.Validate = preprocess.ValidateMP3
	case stage.Transcribe:
		def.Timeout = seconds(m.cfg.Transcription.TimeoutSeconds)
		def.Validate = transcription.ValidateTranscript
	case stage.Compose:
		def.Timeout = seconds(m.cfg.Compose.TimeoutSeconds)
		def.Validate = compose.ValidatePost
	}
	return def
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func (m *Manager) stageLogger(kind stage.Kind) *slog.Logger {
	return logging.ForStage(m.logger, m.cfg.Logging.StageOverrides, kind.String())
}

// RunStage runs a single stage against explicit paths, outside any folder
// layout. The output directory is created when missing.
func (m *Manager) RunStage(ctx context.Context, kind stage.Kind, input, output string, force bool) stageexec.Result {
	runID := m.newRunID()
	ctx = services.WithRunID(ctx, runID)
	def := m.definitionFor(kind, input, output)
	pseudo := job.Job{Label: filepath.Base(filepath.Dir(output))}

	if !m.checker.ShouldSkip(output, force) {
		if err := m.cfg.CheckCredentials(kind.String()); err != nil {
			return stageexec.Result{Kind: kind, Outcome: stage.Failed, Reason: stageexec.ReasonOperationError,
				Err: configurationError("init", "", err)}
		}
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return stageexec.Result{Kind: kind, Outcome: stage.Failed, Reason: stageexec.ReasonOperationError,
				Err: configurationError("init", fmt.Sprintf("create %s", filepath.Dir(output)), err)}
		}
	}

	return stageexec.Run(ctx, def, pseudo, stageexec.Options{
		Logger:    m.stageLogger(kind),
		Checker:   m.checker,
		Overwrite: force,
		RunID:     runID,
		Verbose:   m.verbose,
		Echo:      m.echo,
	})
}
