package logging

import (
	"context"
	"log/slog"
	"strings"
)

// stageLevelHandler raises or lowers the threshold for a single stage while
// delegating output to the wrapped handler.
type stageLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func (h *stageLevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *stageLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *stageLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stageLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *stageLevelHandler) WithGroup(name string) slog.Handler {
	return &stageLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

// ForStage applies the configured level override for stage, if any. The base
// handler must already be configured at the most verbose level any override
// asks for; lowering below it has no visible effect.
func ForStage(logger *slog.Logger, overrides map[string]string, stage string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	raw, ok := overrides[strings.ToLower(strings.TrimSpace(stage))]
	if !ok || strings.TrimSpace(raw) == "" {
		return logger
	}
	next := logger.Handler()
	if existing, ok := next.(*stageLevelHandler); ok {
		next = existing.next
	}
	return slog.New(&stageLevelHandler{next: next, level: ParseLevel(raw)})
}

// MinLevel returns the most verbose level among base and the overrides.
func MinLevel(base string, overrides map[string]string) string {
	lowest := ParseLevel(base)
	name := base
	for _, raw := range overrides {
		if lvl := ParseLevel(raw); lvl < lowest {
			lowest = lvl
			name = raw
		}
	}
	return name
}
