package compose

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

// Operation adapts a Composer to the stage operation contract.
type Operation struct {
	composer Composer
}

// NewOperation wraps c.
func NewOperation(c Composer) *Operation {
	return &Operation{composer: c}
}

// Invoke reads the transcript at input and writes the post to output.
func (o *Operation) Invoke(ctx context.Context, input, output string, diag io.Writer) error {
	if o.composer == nil {
		return services.Wrap(services.ErrConfiguration, "compose", "invoke", "no composer configured", nil)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "compose", "read transcript", input, err)
	}
	transcript := strings.TrimSpace(string(data))
	if transcript == "" {
		return services.Wrap(services.ErrValidation, "compose", "read transcript", "transcript is empty", nil)
	}
	reply, err := o.composer.Compose(ctx, transcript, diag)
	if err != nil {
		return err
	}
	post, synthesized := EnsureTitle(Normalize(reply))
	if synthesized && diag != nil {
		fmt.Fprintln(diag, "reply had no level-one title; added one")
	}
	outline, err := Inspect(post)
	if err != nil {
		return services.Wrap(services.ErrValidation, "compose", "result", "", err)
	}
	if diag != nil {
		fmt.Fprintf(diag, "title=%q sections=%d characters=%d\n", outline.Title, len(outline.Sections), len(post))
	}
	if err := os.WriteFile(output, []byte(post), 0o644); err != nil {
		return fmt.Errorf("write blog post: %w", err)
	}
	return nil
}

// HealthCheck delegates to the provider when it supports one.
func (o *Operation) HealthCheck(ctx context.Context) stage.Health {
	name := stage.Compose.String()
	if o.composer == nil {
		return stage.Unhealthy(name, "no composer configured")
	}
	checker, ok := o.composer.(healthChecker)
	if !ok {
		return stage.Healthy(name)
	}
	if err := checker.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
