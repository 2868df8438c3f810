package stage

import "context"

// Health summarizes the readiness of a stage's operation.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// HealthReporter is implemented by operations that can check their own
// prerequisites (binaries, credentials) without doing any work.
type HealthReporter interface {
	HealthCheck(context.Context) Health
}
