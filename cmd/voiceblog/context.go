package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"voiceblog/internal/config"
	"voiceblog/internal/history"
	"voiceblog/internal/logging"
	"voiceblog/internal/workflow"
)

type commandContext struct {
	configFlag    *string
	logFormatFlag *string
	verboseFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logFormatFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logFormatFlag: logFormatFlag,
		verboseFlag:   verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if format := c.logFormat(); format != "" {
			if format != "console" && format != "json" {
				c.configErr = fmt.Errorf("--log-format: unsupported value %q (want console or json)", format)
				return
			}
			cfg.Logging.Format = format
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) logFormat() string {
	if c.logFormatFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.logFormatFlag))
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// logger writes to the command's stdout. The configured log directory is
// only honoured when stdout is the real terminal stream.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	out := cmd.OutOrStdout()
	if out == os.Stdout {
		return logging.NewFromConfig(cfg, c.verbose())
	}
	level := cfg.Logging.Level
	if c.verbose() {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, Format: cfg.Logging.Format, Writer: out})
}

// childArgs are the global flags forwarded to isolated stage processes.
func (c *commandContext) childArgs() []string {
	var args []string
	if c.configPath != "" {
		args = append(args, "--config", c.configPath)
	}
	if format := c.logFormat(); format != "" {
		args = append(args, "--log-format", format)
	}
	if c.verbose() {
		args = append(args, "--verbose")
	}
	return args
}

// withManager builds a workflow manager for cfg and hands it a context that
// is cancelled on SIGINT or SIGTERM. isolated selects child-process stages
// when the configuration asks for them.
func (c *commandContext) withManager(cmd *cobra.Command, isolated bool, fn func(context.Context, *workflow.Manager) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd, cfg)
	if err != nil {
		return err
	}

	var stages workflow.StageSet
	if isolated && cfg.Workflow.IsolateStages {
		executable, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve executable for isolated stages: %w", err)
		}
		stages = workflow.IsolatedStageSet(executable, c.childArgs()...)
	} else {
		stages, err = workflow.NewStageSet(cfg)
		if err != nil {
			return err
		}
	}

	// Captured stage output always reaches stderr on failure; verbose adds it
	// for successful stages too.
	opts := []workflow.Option{
		workflow.WithVerbose(c.verbose()),
		workflow.WithEcho(cmd.ErrOrStderr()),
	}
	if cfg.Workflow.RecordHistory {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logger.Warn("run history unavailable",
				logging.String(logging.FieldEventType, "history_unavailable"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir or set workflow.record_history = false"),
			)
		} else {
			defer store.Close()
			opts = append(opts, workflow.WithRecorder(store))
		}
	}

	manager := workflow.NewManager(cfg, logger, stages, opts...)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	runCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(runCtx, manager)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// selectorError validates the mutually exclusive folder selectors.
func selectorError(folder string, all bool) error {
	folder = strings.TrimSpace(folder)
	switch {
	case folder != "" && all:
		return errors.New("--folder and --all are mutually exclusive")
	case folder == "" && !all:
		return errors.New("specify --folder <label> or --all")
	}
	return nil
}
