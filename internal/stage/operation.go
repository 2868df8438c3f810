package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"voiceblog/internal/services"
)

// Operation performs the work of one stage: read input, write output.
// Diagnostic text goes to diag, which is never nil when called by the runner.
type Operation interface {
	Invoke(ctx context.Context, input, output string, diag io.Writer) error
}

// Func adapts an in-process function to Operation.
type Func func(ctx context.Context, input, output string, diag io.Writer) error

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, input, output string, diag io.Writer) error {
	return f(ctx, input, output, diag)
}

// Command runs an external program. Stdout and stderr are both captured into
// the diagnostic writer.
type Command struct {
	Binary string
	Args   func(input, output string) []string
	Env    []string
	// WaitDelay bounds how long a cancelled process may take to exit after
	// it has been killed. Zero uses a short default.
	WaitDelay time.Duration
}

var commandContext = exec.CommandContext

// Invoke runs the command and classifies its termination.
func (c Command) Invoke(ctx context.Context, input, output string, diag io.Writer) error {
	if c.Binary == "" {
		return services.Wrap(services.ErrConfiguration, "", "run command", "no binary configured", nil)
	}
	if diag == nil {
		diag = io.Discard
	}
	var args []string
	if c.Args != nil {
		args = c.Args(input, output)
	}
	cmd := commandContext(ctx, c.Binary, args...)
	cmd.Stdout = diag
	cmd.Stderr = diag
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 5 * time.Second
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", filepath.Base(c.Binary), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return services.Wrap(services.ErrExternalTool, "", filepath.Base(c.Binary), "", err)
	}
	return services.Wrap(services.ErrExternalTool, "", filepath.Base(c.Binary), "failed to start", err)
}
