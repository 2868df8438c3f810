package workflow

import (
	"context"
	"time"

	"voiceblog/internal/logging"
	"voiceblog/internal/stage"
)

// RunAll runs every folder under the input root that holds a raw recording,
// one after another. Failed folders do not stop the batch; an interrupt
// does.
func (m *Manager) RunAll(ctx context.Context, steps stage.Set, force bool) ([]Report, error) {
	labels, err := m.layout.Discover()
	if err != nil {
		return nil, err
	}
	m.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("folders", len(labels)),
	)
	start := time.Now()
	reports := make([]Report, 0, len(labels))
	failed := 0
	for _, label := range labels {
		if ctx.Err() != nil {
			break
		}
		report := m.run(ctx, Request{Label: label, Steps: steps, Force: force}, false)
		if !report.Succeeded() {
			failed++
		}
		reports = append(reports, report)
	}
	m.logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("folders", len(reports)),
		logging.Int("failed", failed),
	)
	if len(reports) > 0 {
		m.notifyBatch(ctx, len(reports), failed, time.Since(start))
	}
	return reports, ctx.Err()
}
