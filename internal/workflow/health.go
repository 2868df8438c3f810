package workflow

import (
	"context"

	"voiceblog/internal/stage"
)

// StageHealth reports the readiness of each requested stage's operation.
// Operations that cannot check themselves are reported ready.
func (m *Manager) StageHealth(ctx context.Context, steps stage.Set) []stage.Health {
	if len(steps) == 0 {
		steps = stage.All
	}
	out := make([]stage.Health, 0, len(steps))
	for _, kind := range steps {
		op := m.stages.Operation(kind)
		if op == nil {
			out = append(out, stage.Unhealthy(kind.String(), "no operation configured"))
			continue
		}
		if reporter, ok := op.(stage.HealthReporter); ok {
			out = append(out, reporter.HealthCheck(ctx))
			continue
		}
		out = append(out, stage.Healthy(kind.String()))
	}
	return out
}
