package workflow

import (
	"errors"
	"fmt"
	"time"

	"voiceblog/internal/job"
	"voiceblog/internal/services"
	"voiceblog/internal/stage"
	"voiceblog/internal/stageexec"
)

// StageSet bundles the operations the manager invokes for each stage.
type StageSet struct {
	Preprocess stage.Operation
	Transcribe stage.Operation
	Compose    stage.Operation
}

// Operation returns the operation bound to k.
func (s StageSet) Operation(k stage.Kind) stage.Operation {
	switch k {
	case stage.Preprocess:
		return s.Preprocess
	case stage.Transcribe:
		return s.Transcribe
	case stage.Compose:
		return s.Compose
	default:
		return nil
	}
}

// Request describes one orchestrator invocation.
type Request struct {
	Label string
	// Steps is the ordered subset to run. Empty means all stages.
	Steps stage.Set
	// Force disables skip-on-exists for every requested stage.
	Force bool
}

// State is the orchestrator state a run ended in.
type State string

const (
	StateDone   State = "done"
	StateFailed State = "failed"
)

// Init failure reasons. Stage failures carry the stageexec reason instead.
const (
	ReasonMissingInput  = "missing_input"
	ReasonConfiguration = "configuration"
)

// Report is the outcome of one run.
type Report struct {
	RunID string
	Job   job.Job
	Steps stage.Set
	State State
	// FailedStage is zero when the run failed during initialisation.
	FailedStage stage.Kind
	Reason      string
	Failure     error
	Results     []stageexec.Result
	Manifest    *Manifest
	StartedAt   time.Time
	Duration    time.Duration
}

// Succeeded reports whether the run reached the terminal success state.
func (r Report) Succeeded() bool {
	return r.State == StateDone
}

// Err returns nil on success and a descriptive error otherwise.
func (r Report) Err() error {
	if r.Succeeded() {
		return nil
	}
	label := r.Job.Label
	if label == "" {
		label = "?"
	}
	cause := r.Failure
	if cause == nil {
		cause = errors.New(r.Reason)
	}
	if r.FailedStage == 0 {
		return fmt.Errorf("folder %s: %w", label, cause)
	}
	return fmt.Errorf("folder %s: step %d (%s) failed: %w", label, int(r.FailedStage), r.FailedStage, cause)
}

// Counts tallies stage outcomes.
func (r Report) Counts() (skipped, succeeded, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case stage.Skipped:
			skipped++
		case stage.Succeeded:
			succeeded++
		case stage.Failed:
			failed++
		}
	}
	return skipped, succeeded, failed
}

func initFailure(report Report, reason string, err error) Report {
	report.State = StateFailed
	report.FailedStage = 0
	report.Reason = reason
	report.Failure = err
	return report
}

func configurationError(op, message string, err error) error {
	return services.Wrap(services.ErrConfiguration, "workflow", op, message, err)
}
