// Package artifact decides whether a stage output already exists and moves
// freshly produced outputs into place atomically.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voiceblog/internal/fileutil"
)

const partialMarker = ".partial"

// Info describes an artifact on disk at the moment it was inspected.
type Info struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Checker applies the completion rules. A zero Checker accepts any non-empty
// regular file.
type Checker struct {
	MinBytes int64
}

// Stat inspects path. Directories and files smaller than the minimum size are
// reported as absent.
func (c Checker) Stat(path string) Info {
	info := Info{Path: path}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return info
	}
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()
	info.Exists = fi.Size() >= c.minBytes()
	return info
}

// Exists reports whether path holds a completed artifact.
func (c Checker) Exists(path string) bool {
	return c.Stat(path).Exists
}

// ShouldSkip is true iff the artifact exists and overwrite was not requested.
func (c Checker) ShouldSkip(path string, overwrite bool) bool {
	if overwrite {
		return false
	}
	return c.Exists(path)
}

func (c Checker) minBytes() int64 {
	if c.MinBytes <= 0 {
		return 1
	}
	return c.MinBytes
}

// ShouldSkip applies the default Checker.
func ShouldSkip(path string, overwrite bool) bool {
	return Checker{}.ShouldSkip(path, overwrite)
}

// Exists applies the default Checker.
func Exists(path string) bool {
	return Checker{}.Exists(path)
}

// StagingPath returns the hidden sibling an operation writes to before the
// result is committed, e.g. output/7/.transcript.<run>.partial.txt. Keeping
// the extension lets tools that infer format from the name (ffmpeg) work.
func StagingPath(output, runID string) string {
	dir, name := filepath.Split(output)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if runID == "" {
		runID = "run"
	}
	return filepath.Join(dir, fmt.Sprintf(".%s.%s%s%s", base, runID, partialMarker, ext))
}

// IsStaging reports whether name looks like a staging file.
func IsStaging(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, partialMarker)
}

// Commit moves a staged artifact onto its final path, replacing any previous
// version in one rename.
func Commit(staging, output string) error {
	if err := fileutil.MoveFile(staging, output); err != nil {
		return fmt.Errorf("commit %s: %w", filepath.Base(output), err)
	}
	if err := fileutil.SyncDir(filepath.Dir(output)); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Dir(output), err)
	}
	return nil
}

// Discard removes a staging file left by a failed or interrupted operation.
func Discard(staging string) error {
	return fileutil.RemoveIfExists(staging)
}

// CleanStale removes staging files abandoned by runs that were killed before
// they could clean up. Callers must hold the folder lock.
func CleanStale(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !IsStaging(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := fileutil.RemoveIfExists(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
