package job

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"voiceblog/internal/services"
)

// Artifact file names inside a job's input and output folders.
const (
	RawAudioName       = "raw.mp3"
	ProcessedAudioName = "processed.mp3"
	TranscriptName     = "transcript.txt"
	BlogPostName       = "blog_post.md"
)

// Layout holds the two roots every job path is derived from.
type Layout struct {
	InputRoot  string
	OutputRoot string
}

// Job is one recording identified by its folder label.
type Job struct {
	Label          string
	InputDir       string
	OutputDir      string
	RawAudio       string
	ProcessedAudio string
	Transcript     string
	BlogPost       string
}

// Resolve derives the job paths for label.
func (l Layout) Resolve(label string) (Job, error) {
	label = strings.TrimSpace(label)
	if err := ValidateLabel(label); err != nil {
		return Job{}, err
	}
	inputDir := filepath.Join(l.InputRoot, label)
	outputDir := filepath.Join(l.OutputRoot, label)
	return Job{
		Label:          label,
		InputDir:       inputDir,
		OutputDir:      outputDir,
		RawAudio:       filepath.Join(inputDir, RawAudioName),
		ProcessedAudio: filepath.Join(outputDir, ProcessedAudioName),
		Transcript:     filepath.Join(outputDir, TranscriptName),
		BlogPost:       filepath.Join(outputDir, BlogPostName),
	}, nil
}

// ValidateLabel rejects labels that would escape the input or output root.
func ValidateLabel(label string) error {
	switch {
	case label == "":
		return services.Wrap(services.ErrValidation, "job", "resolve", "folder label is required", nil)
	case label == "." || label == "..":
		return services.Wrap(services.ErrValidation, "job", "resolve", fmt.Sprintf("invalid folder label %q", label), nil)
	case strings.ContainsAny(label, `/\`) || strings.ContainsRune(label, 0):
		return services.Wrap(services.ErrValidation, "job", "resolve", fmt.Sprintf("folder label %q must be a single path element", label), nil)
	}
	return nil
}

// Outputs returns the three output artifact paths in stage order.
func (j Job) Outputs() []string {
	return []string{j.ProcessedAudio, j.Transcript, j.BlogPost}
}

// Discover lists the labels under the input root that contain a raw
// recording. Numeric labels sort numerically and come first; the rest sort
// lexically.
func (l Layout) Discover() ([]string, error) {
	entries, err := os.ReadDir(l.InputRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "job", "discover", fmt.Sprintf("input root %s does not exist", l.InputRoot), err)
		}
		return nil, fmt.Errorf("read input root: %w", err)
	}
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(l.InputRoot, entry.Name(), RawAudioName))
		if err != nil || info.IsDir() {
			continue
		}
		labels = append(labels, entry.Name())
	}
	SortLabels(labels)
	return labels, nil
}

// SortLabels orders labels numerically where possible.
func SortLabels(labels []string) {
	slices.SortStableFunc(labels, func(a, b string) int {
		na, errA := strconv.Atoi(a)
		nb, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			if c := cmp.Compare(na, nb); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
