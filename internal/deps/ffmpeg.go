package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CheckFFmpeg resolves the ffmpeg binary preprocessing will execute. An
// explicit path must exist and be executable; a bare name is looked up on
// PATH.
func CheckFFmpeg(configured string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Audio preprocessing filter chain",
	}
	binary := strings.TrimSpace(configured)
	if binary == "" {
		binary = "ffmpeg"
	}
	result.Command = binary

	if strings.ContainsRune(binary, filepath.Separator) {
		info, err := os.Stat(binary)
		switch {
		case err != nil:
			result.Detail = fmt.Sprintf("configured ffmpeg %q: %v", binary, err)
		case !isExecutable(info):
			result.Detail = fmt.Sprintf("configured ffmpeg %q is not executable", binary)
		default:
			result.Available = true
		}
		return result
	}

	if resolved, err := exec.LookPath(binary); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("binary %q not found", binary)
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
