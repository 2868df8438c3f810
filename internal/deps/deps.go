package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"voiceblog/internal/config"
	"voiceblog/internal/stage"
)

// Requirement defines an external binary a stage relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if resolved, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Command = resolved
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Requirements lists the binaries the requested stages need under cfg.
// Provider-backed stages that only make HTTP calls need none.
func Requirements(cfg *config.Config, stages stage.Set) []Requirement {
	var reqs []Requirement
	if stages.Contains(stage.Preprocess) {
		reqs = append(reqs, Requirement{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Audio preprocessing filter chain",
		})
	}
	if stages.Contains(stage.Transcribe) && cfg.Transcription.Provider == "whisperx" {
		reqs = append(reqs, Requirement{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Runs WhisperX for local transcription",
		})
	}
	return reqs
}

// Missing returns the required (non-optional) statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
