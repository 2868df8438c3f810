package workflow

import (
	"voiceblog/internal/artifact"
	"voiceblog/internal/job"
	"voiceblog/internal/stage"
)

// ManifestEntry reports one output artifact.
type ManifestEntry struct {
	Kind   stage.Kind
	Path   string
	Exists bool
	Size   int64
}

// Manifest lists the three output artifacts of a job, whichever run
// produced them.
type Manifest struct {
	Label     string
	OutputDir string
	Entries   []ManifestEntry
}

// BuildManifest stats the output artifacts of j.
func BuildManifest(j job.Job, checker artifact.Checker) Manifest {
	m := Manifest{Label: j.Label, OutputDir: j.OutputDir}
	for i, path := range j.Outputs() {
		info := checker.Stat(path)
		m.Entries = append(m.Entries, ManifestEntry{
			Kind:   stage.All[i],
			Path:   path,
			Exists: info.Exists,
			Size:   info.Size,
		})
	}
	return m
}

// Existing returns the paths of artifacts that exist.
func (m Manifest) Existing() []string {
	var out []string
	for _, e := range m.Entries {
		if e.Exists {
			out = append(out, e.Path)
		}
	}
	return out
}

// Complete reports whether every output artifact exists.
func (m Manifest) Complete() bool {
	return len(m.Existing()) == len(m.Entries) && len(m.Entries) > 0
}
