package workflow

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"voiceblog/internal/artifact"
	"voiceblog/internal/config"
	"voiceblog/internal/history"
	"voiceblog/internal/job"
	"voiceblog/internal/logging"
	"voiceblog/internal/notifications"
)

// Recorder receives run and stage outcomes. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) error
	RecordStage(ctx context.Context, runID string, rec history.StageRecord) error
	Finish(ctx context.Context, run history.Run) error
}

// Manager runs the pipeline for one folder at a time.
type Manager struct {
	cfg      *config.Config
	layout   job.Layout
	logger   *slog.Logger
	stages   StageSet
	checker  artifact.Checker
	recorder Recorder
	notifier notifications.Service
	echo     io.Writer
	verbose  bool
	newRunID func() string
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithRecorder records every run in r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithNotifier replaces the notifier built from the configuration.
func WithNotifier(n notifications.Service) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithEcho sets where captured stage output is echoed.
func WithEcho(w io.Writer) Option {
	return func(m *Manager) {
		m.echo = w
	}
}

// WithVerbose echoes captured output for successful stages too.
func WithVerbose(verbose bool) Option {
	return func(m *Manager) {
		m.verbose = verbose
	}
}

// WithRunIDs overrides run id generation (used in tests).
func WithRunIDs(next func() string) Option {
	return func(m *Manager) {
		if next != nil {
			m.newRunID = next
		}
	}
}

// NewManager constructs a workflow manager for cfg using the given stage
// operations.
func NewManager(cfg *config.Config, logger *slog.Logger, stages StageSet, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		layout:   job.Layout{InputRoot: cfg.InputRoot(), OutputRoot: cfg.OutputRoot()},
		logger:   logging.NewComponentLogger(logger, "workflow"),
		stages:   stages,
		checker:  artifact.Checker{MinBytes: cfg.Workflow.MinArtifactBytes},
		notifier: notifications.NewService(cfg),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Layout exposes the input and output roots the manager resolves jobs
// against.
func (m *Manager) Layout() job.Layout {
	return m.layout
}

// Checker returns the completion checker used for skip decisions.
func (m *Manager) Checker() artifact.Checker {
	return m.checker
}
