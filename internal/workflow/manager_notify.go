package workflow

import (
	"context"
	"fmt"
	"time"

	"voiceblog/internal/logging"
)

func (m *Manager) notifyFinish(ctx context.Context, report Report) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if report.Succeeded() {
		skipped, succeeded, _ := report.Counts()
		err = m.notifier.NotifyRunCompleted(ctx, report.Job.Label, succeeded, skipped, report.Duration)
	} else {
		step := "init"
		if report.FailedStage.Valid() {
			step = fmt.Sprintf("step %d (%s)", int(report.FailedStage), report.FailedStage)
		}
		err = m.notifier.NotifyRunFailed(ctx, report.Job.Label, step, report.Failure)
	}
	if err != nil {
		m.logger.Warn("notification failed",
			logging.String(logging.FieldEventType, "notify_failed"),
			logging.Error(err),
		)
	}
}

func (m *Manager) notifyBatch(ctx context.Context, processed, failed int, duration time.Duration) {
	if err := m.notifier.NotifyBatchCompleted(context.WithoutCancel(ctx), processed, failed, duration); err != nil {
		m.logger.Warn("notification failed",
			logging.String(logging.FieldEventType, "notify_failed"),
			logging.Error(err),
		)
	}
}
