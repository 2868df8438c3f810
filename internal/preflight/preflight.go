package preflight

import (
	"context"

	"voiceblog/internal/config"
	"voiceblog/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options narrows which checks RunAll performs.
type Options struct {
	// Offline skips checks that contact remote APIs.
	Offline bool
}

// RunAll executes the checks that apply to stages under cfg.
func RunAll(ctx context.Context, cfg *config.Config, stages stage.Set, opts Options) []Result {
	if cfg == nil {
		return nil
	}
	if len(stages) == 0 {
		stages = stage.All
	}

	results := []Result{
		CheckDirectoryAccess("Input directory", cfg.InputRoot()),
		CheckCreatable("Output directory", cfg.OutputRoot()),
	}
	if cfg.Workflow.RecordHistory {
		results = append(results, CheckCreatable("State directory", cfg.Paths.StateDir))
	}

	for _, status := range CheckSystemDeps(cfg, stages) {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Command}
		if !status.Available {
			r.Detail = status.Detail
		}
		results = append(results, r)
	}

	credentials := CheckCredentials(cfg, stages)
	results = append(results, credentials...)

	if !opts.Offline && usesSharedLLM(cfg, stages) && cfg.LLM.APIKey != "" {
		results = append(results, CheckLLM(ctx, "LLM API", cfg.GetLLM()))
	}
	return results
}

// Failed filters results down to failures.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func usesSharedLLM(cfg *config.Config, stages stage.Set) bool {
	return (stages.Contains(stage.Transcribe) && cfg.Transcription.Provider == "llm") ||
		(stages.Contains(stage.Compose) && cfg.Compose.Provider == "llm")
}
