package workflow

import (
	"context"

	"voiceblog/internal/history"
	"voiceblog/internal/logging"
	"voiceblog/internal/stageexec"
)

func (m *Manager) recordBegin(ctx context.Context, report Report, force bool) {
	if m.recorder == nil {
		return
	}
	err := m.recorder.Begin(context.WithoutCancel(ctx), history.Run{
		ID:        report.RunID,
		Folder:    report.Job.Label,
		Steps:     report.Steps.String(),
		Force:     force,
		StartedAt: report.StartedAt,
	})
	if err != nil {
		m.logger.Warn("history record failed", logging.String("op", "begin"), logging.Error(err))
	}
}

func (m *Manager) recordStage(ctx context.Context, runID string, result stageexec.Result) {
	if m.recorder == nil {
		return
	}
	rec := history.StageRecord{
		Stage:    int(result.Kind),
		Name:     result.Kind.String(),
		Outcome:  result.Outcome.String(),
		Reason:   string(result.Reason),
		Duration: result.Duration,
	}
	if result.Err != nil {
		rec.Error = result.Err.Error()
	}
	if err := m.recorder.RecordStage(context.WithoutCancel(ctx), runID, rec); err != nil {
		m.logger.Warn("history record failed", logging.String("op", "stage"), logging.Error(err))
	}
}

func (m *Manager) recordFinish(ctx context.Context, report Report) {
	if m.recorder == nil {
		return
	}
	run := history.Run{
		ID:          report.RunID,
		Status:      history.StatusDone,
		FailedStage: int(report.FailedStage),
		Reason:      report.Reason,
		FinishedAt:  report.StartedAt.Add(report.Duration),
	}
	if !report.Succeeded() {
		run.Status = history.StatusFailed
	}
	if report.Failure != nil {
		run.Error = report.Failure.Error()
	}
	if err := m.recorder.Finish(context.WithoutCancel(ctx), run); err != nil {
		m.logger.Warn("history record failed", logging.String("op", "finish"), logging.Error(err))
	}
}
