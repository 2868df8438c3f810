package stage

import "time"

// Outcome is the per-stage terminal state of a run.
type Outcome int

const (
	Skipped Outcome = iota + 1
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Definition binds a stage to concrete paths and the operation producing its
// output.
type Definition struct {
	Kind      Kind
	Input     string
	Output    string
	Operation Operation
	Timeout   time.Duration
	// Validate inspects a freshly written artifact before it replaces the
	// output. Nil accepts any non-empty file.
	Validate func(path string) error
}
