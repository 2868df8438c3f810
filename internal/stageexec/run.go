package stageexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"voiceblog/internal/artifact"
	"voiceblog/internal/job"
	"voiceblog/internal/logging"
	"voiceblog/internal/services"
	"voiceblog/internal/stage"
)

// Reason distinguishes why a stage failed.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMissingPredecessor Reason = "missing_predecessor"
	ReasonOperationError     Reason = "operation_error"
	ReasonTimeout            Reason = "timeout"
	ReasonInterrupted        Reason = "interrupted"
	ReasonInvalidOutput      Reason = "invalid_output"
)

// Result is the terminal record of one stage execution.
type Result struct {
	Kind     stage.Kind
	Outcome  stage.Outcome
	Reason   Reason
	Err      error
	Output   string
	Duration time.Duration
	Artifact artifact.Info
}

// Options controls stage execution.
type Options struct {
	Logger    *slog.Logger
	Checker   artifact.Checker
	Overwrite bool
	RunID     string
	// Verbose echoes captured operation output even when the stage succeeds.
	Verbose bool
	// Echo receives captured operation output. Nil disables echoing.
	Echo io.Writer
}

const maxCapturedOutput = 64 * 1024

// Run executes one stage definition for j. The skip check happens before the
// predecessor check so a completed stage never fails because an upstream
// intermediate was cleaned up.
func Run(ctx context.Context, def stage.Definition, j job.Job, opts Options) Result {
	stageCtx := services.WithStage(services.WithFolder(ctx, j.Label), def.Kind.String())
	logger := logging.WithContext(stageCtx, opts.Logger)
	result := Result{Kind: def.Kind}

	if opts.Checker.ShouldSkip(def.Output, opts.Overwrite) {
		result.Outcome = stage.Skipped
		result.Artifact = opts.Checker.Stat(def.Output)
		logger.Info(
			"stage skipped, output exists",
			logging.String(logging.FieldEventType, "stage_skip"),
			logging.String("output", def.Output),
		)
		return result
	}

	if !opts.Checker.Exists(def.Input) {
		result.Outcome = stage.Failed
		result.Reason = ReasonMissingPredecessor
		result.Err = services.Wrap(services.ErrPredecessorMissing, def.Kind.String(), "check input",
			fmt.Sprintf("required input %s does not exist", def.Input), nil)
		logging.ErrorWithContext(logger, "stage input missing", "stage_failure",
			logging.String("input", def.Input),
			logging.String("reason", string(result.Reason)),
			logging.String(logging.FieldErrorHint, "run the earlier steps first or pass --steps including them"),
		)
		return result
	}

	if def.Operation == nil {
		result.Outcome = stage.Failed
		result.Reason = ReasonOperationError
		result.Err = services.Wrap(services.ErrConfiguration, def.Kind.String(), "run", "no operation configured", nil)
		return result
	}

	staging := artifact.StagingPath(def.Output, opts.RunID)
	opCtx := stageCtx
	if def.Timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(stageCtx, def.Timeout)
		defer cancel()
	}

	logger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("input", def.Input),
		logging.String("output", def.Output),
		logging.Bool("overwrite", opts.Overwrite),
		logging.Duration("timeout", def.Timeout),
	)

	capture := &tailBuffer{limit: maxCapturedOutput}
	start := time.Now()
	opErr := def.Operation.Invoke(opCtx, def.Input, staging, capture)
	result.Duration = time.Since(start)
	result.Output = capture.String()

	if opErr == nil {
		opErr = validateStaged(def, staging, opts.Checker)
		if opErr != nil {
			result.Reason = ReasonInvalidOutput
		}
	} else {
		result.Reason = classify(ctx, opCtx, opErr)
	}

	if opErr == nil {
		if err := artifact.Commit(staging, def.Output); err != nil {
			opErr = services.Wrap(services.ErrExternalTool, def.Kind.String(), "commit output", "", err)
			result.Reason = ReasonOperationError
		}
	}

	if opErr != nil {
		if err := artifact.Discard(staging); err != nil {
			logger.Warn("staging cleanup failed", logging.String("path", staging), logging.Error(err))
		}
		result.Outcome = stage.Failed
		result.Err = wrapFailure(def, result.Reason, opErr)
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String("reason", string(result.Reason)),
			logging.Duration("duration", result.Duration),
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, hintFor(result.Reason)),
		)
		echo(opts.Echo, def.Kind, result.Output)
		return result
	}

	result.Outcome = stage.Succeeded
	result.Artifact = opts.Checker.Stat(def.Output)
	logging.Success(logger, "stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output", def.Output),
		logging.Int64("bytes", result.Artifact.Size),
		logging.Duration("duration", result.Duration),
	)
	if opts.Verbose {
		echo(opts.Echo, def.Kind, result.Output)
	}
	return result
}

func validateStaged(def stage.Definition, staging string, checker artifact.Checker) error {
	if !checker.Exists(staging) {
		return services.Wrap(services.ErrValidation, def.Kind.String(), "validate output",
			"operation reported success but produced no output", nil)
	}
	if def.Validate != nil {
		if err := def.Validate(staging); err != nil {
			return services.Wrap(services.ErrValidation, def.Kind.String(), "validate output", "", err)
		}
	}
	return nil
}

// classify distinguishes a per-stage timeout from an interrupt of the whole
// run. Both surface as context errors from the operation.
func classify(parent, opCtx context.Context, err error) Reason {
	switch {
	case parent.Err() != nil:
		return ReasonInterrupted
	case errors.Is(opCtx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonOperationError
	}
}

func wrapFailure(def stage.Definition, reason Reason, err error) error {
	switch reason {
	case ReasonTimeout:
		return services.Wrap(services.ErrTimeout, def.Kind.String(), "run",
			fmt.Sprintf("exceeded %s", def.Timeout), err)
	case ReasonInterrupted:
		return services.Wrap(services.ErrInterrupted, def.Kind.String(), "run", "interrupted", err)
	}
	if services.Classify(err) == services.ErrTransient {
		return services.Wrap(services.ErrExternalTool, def.Kind.String(), "run", "", err)
	}
	return err
}

func hintFor(reason Reason) string {
	switch reason {
	case ReasonTimeout:
		return "raise the stage timeout in config or retry"
	case ReasonInterrupted:
		return "rerun to resume; completed stages are skipped"
	case ReasonInvalidOutput:
		return "inspect the operation output with --verbose"
	default:
		return "fix the cause and rerun; completed stages are skipped"
	}
}

func echo(w io.Writer, kind stage.Kind, output string) {
	if w == nil {
		return
	}
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	fmt.Fprintf(w, "--- %s output ---\n%s\n", kind, output)
}

// tailBuffer keeps the last limit bytes written to it. Long-running tools
// such as ffmpeg print progress continuously; only the tail is useful.
type tailBuffer struct {
	limit     int
	buf       []byte
	truncated bool
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; b.limit > 0 && over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
		b.truncated = true
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	if b.truncated {
		return "[...]\n" + string(b.buf)
	}
	return string(b.buf)
}
