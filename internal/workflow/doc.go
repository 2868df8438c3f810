// Package workflow sequences the pipeline stages for one recording.
//
// The Manager resolves a folder label into a Job and validates its input and
// credentials. It creates and locks the output folder, then walks the
// requested stages in canonical order through stageexec.Run. Every stage is
// skipped when its output already exists, so reruns resume where the last run
// stopped. The first failure halts the run; a run that reaches the end emits
// a Manifest of the three output artifacts.
//
// The Manager holds no state between runs: file presence in the output
// folder is the only record of completed work. The optional history ledger
// is written for reporting and never read back here.
package workflow
