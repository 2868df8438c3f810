package workflow

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"voiceblog/internal/artifact"
	"voiceblog/internal/job"
	"voiceblog/internal/logging"
	"voiceblog/internal/services"
	"voiceblog/internal/stage"
	"voiceblog/internal/stageexec"
)

// Run drives one folder through the requested stages.
func (m *Manager) Run(ctx context.Context, req Request) Report {
	return m.run(ctx, req, true)
}

func (m *Manager) run(ctx context.Context, req Request, notify bool) Report {
	start := time.Now()
	report := Report{RunID: m.newRunID(), StartedAt: start, Steps: req.Steps}
	if len(report.Steps) == 0 {
		report.Steps = slices.Clone(stage.Set(stage.All))
	}
	ctx = services.WithRunID(ctx, report.RunID)

	j, err := m.layout.Resolve(req.Label)
	if err != nil {
		report = initFailure(report, ReasonMissingInput, err)
		report.Job.Label = req.Label
		report.Duration = time.Since(start)
		m.logger.Error("invalid folder label",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("folder", req.Label),
			logging.Error(err),
		)
		return report
	}
	report.Job = j
	ctx = services.WithFolder(ctx, j.Label)
	logger := logging.WithContext(ctx, m.logger)

	m.recordBegin(ctx, report, req.Force)
	defer func() {
		m.recordFinish(ctx, report)
		if notify {
			m.notifyFinish(ctx, report)
		}
	}()

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("steps", report.Steps.String()),
		logging.Bool("force", req.Force),
		logging.String("input", j.RawAudio),
		logging.String("output_dir", j.OutputDir),
	)

	release, failed := m.initialise(ctx, &report, req)
	if failed {
		report.Duration = time.Since(start)
		logging.ErrorWithContext(logger, "run failed before any stage", "run_failed",
			logging.String("reason", report.Reason),
			logging.Error(report.Failure),
			logging.String(logging.FieldErrorHint, initHint(report.Reason)),
		)
		return report
	}
	defer release()

	for _, kind := range report.Steps {
		if ctx.Err() != nil {
			report.Results = append(report.Results, stageexec.Result{
				Kind:    kind,
				Outcome: stage.Failed,
				Reason:  stageexec.ReasonInterrupted,
				Err:     services.Wrap(services.ErrInterrupted, kind.String(), "run", "interrupted before start", ctx.Err()),
			})
		} else {
			report.Results = append(report.Results, m.runStage(ctx, kind, j, req.Force))
		}
		result := report.Results[len(report.Results)-1]
		m.recordStage(ctx, report.RunID, result)
		if result.Outcome == stage.Failed {
			report.State = StateFailed
			report.FailedStage = kind
			report.Reason = string(result.Reason)
			report.Failure = result.Err
			report.Duration = time.Since(start)
			logging.ErrorWithContext(logger, "run halted", "run_failed",
				logging.Int("failed_step", int(kind)),
				logging.String("stage", kind.String()),
				logging.String("reason", report.Reason),
				logging.Error(result.Err),
				logging.String(logging.FieldErrorHint, "completed steps are kept; rerun to resume"),
			)
			return report
		}
	}

	manifest := BuildManifest(j, m.checker)
	report.Manifest = &manifest
	report.State = StateDone
	report.Duration = time.Since(start)
	skipped, succeeded, _ := report.Counts()
	logging.Success(logger, "run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("succeeded", succeeded),
		logging.Int("skipped", skipped),
		logging.Int("artifacts", len(manifest.Existing())),
		logging.Duration("duration", report.Duration),
	)
	return report
}

// initialise performs the Init state: input validation, credential checks
// for stages that will run, output folder creation and locking. It returns
// a release func on success.
func (m *Manager) initialise(ctx context.Context, report *Report, req Request) (func(), bool) {
	j := report.Job
	if info, err := os.Stat(j.InputDir); err != nil || !info.IsDir() {
		*report = initFailure(*report, ReasonMissingInput,
			services.Wrap(services.ErrNotFound, "workflow", "init", fmt.Sprintf("input folder %s does not exist", j.InputDir), err))
		return nil, true
	}
	if !m.checker.Exists(j.RawAudio) {
		*report = initFailure(*report, ReasonMissingInput,
			services.Wrap(services.ErrNotFound, "workflow", "init", fmt.Sprintf("raw audio %s does not exist", j.RawAudio), nil))
		return nil, true
	}

	pending := m.pendingStages(report.Steps, j, req.Force)
	if err := m.cfg.CheckCredentials(pending...); err != nil {
		*report = initFailure(*report, ReasonConfiguration, configurationError("init", "", err))
		return nil, true
	}

	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		*report = initFailure(*report, ReasonConfiguration, configurationError("init", "create output folder", err))
		return nil, true
	}

	release := func() {}
	if m.cfg.Workflow.LockFolders {
		lock, err := acquireFolderLock(j.OutputDir)
		if err != nil {
			*report = initFailure(*report, ReasonConfiguration, err)
			return nil, true
		}
		release = func() {
			if err := lock.Unlock(); err != nil {
				m.logger.Warn("release folder lock failed", logging.Error(err))
			}
		}
	}

	removed, err := artifact.CleanStale(j.OutputDir)
	if err != nil {
		logging.WithContext(ctx, m.logger).Warn("stale staging cleanup failed", logging.Error(err))
	}
	for _, path := range removed {
		logging.WithContext(ctx, m.logger).Info("removed interrupted staging file", logging.String("path", path))
	}
	return release, false
}

// pendingStages names the requested stages that will not be skipped.
func (m *Manager) pendingStages(steps stage.Set, j job.Job, force bool) []string {
	outputs := j.Outputs()
	var names []string
	for _, k := range steps {
		if !m.checker.ShouldSkip(outputs[int(k)-1], force) {
			names = append(names, k.String())
		}
	}
	return names
}

func (m *Manager) runStage(ctx context.Context, kind stage.Kind, j job.Job, force bool) stageexec.Result {
	def := m.definition(kind, j)
	runID, _ := services.RunIDFromContext(ctx)
	return stageexec.Run(ctx, def, j, stageexec.Options{
		Logger:    m.stageLogger(kind),
		Checker:   m.checker,
		Overwrite: force,
		RunID:     runID,
		Verbose:   m.verbose,
		Echo:      m.echo,
	})
}

func initHint(reason string) string {
	switch reason {
	case ReasonMissingInput:
		return "place the recording at input/audio-file/<folder>/raw.mp3"
	case ReasonConfiguration:
		return "check credentials in the environment, .env or the config file"
	default:
		return ""
	}
}
