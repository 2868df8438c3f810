package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"voiceblog/internal/testsupport"
)

func TestShouldSkip(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(present, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	subdir := filepath.Join(dir, "blog_post.md")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		overwrite bool
		want      bool
	}{
		{"present", present, false, true},
		{"present overwrite", present, true, false},
		{"missing", filepath.Join(dir, "missing"), false, false},
		{"missing overwrite", filepath.Join(dir, "missing"), true, false},
		{"zero bytes", empty, false, false},
		{"directory", subdir, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldSkip(tc.path, tc.overwrite); got != tc.want {
				t.Fatalf("ShouldSkip = %v, want %v", got, tc.want)
			}
			// Repeated calls observe the same state.
			if got := ShouldSkip(tc.path, tc.overwrite); got != tc.want {
				t.Fatalf("second ShouldSkip = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckerMinBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.mp3")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !(Checker{MinBytes: 3}).Exists(path) {
		t.Fatal("3 bytes should satisfy MinBytes=3")
	}
	if (Checker{MinBytes: 4}).Exists(path) {
		t.Fatal("3 bytes should not satisfy MinBytes=4")
	}
	info := Checker{}.Stat(path)
	if !info.Exists || info.Size != 3 || info.ModTime.IsZero() {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestCheckerMinBytesLargeArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "processed.mp3")
	testsupport.WriteFile(t, path, 64*1024+1)
	checker := Checker{MinBytes: 64 * 1024}
	if !checker.ShouldSkip(path, false) {
		t.Fatal("artifact above the minimum should be skipped")
	}
	if info := checker.Stat(path); info.Size != 64*1024+1 {
		t.Fatalf("size = %d", info.Size)
	}
}

func TestStagingPathKeepsExtension(t *testing.T) {
	got := StagingPath("/out/7/processed.mp3", "abc")
	if got != "/out/7/.processed.abc.partial.mp3" {
		t.Fatalf("unexpected staging path %q", got)
	}
	if !IsStaging(filepath.Base(got)) {
		t.Fatal("staging path should be recognised")
	}
	if IsStaging("processed.mp3") {
		t.Fatal("final artifact must not look like staging")
	}
}

func TestCommitAndCleanStale(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "blog_post.md")
	staging := StagingPath(output, "r1")
	if err := os.WriteFile(staging, []byte("# Title\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Commit(staging, output); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !Exists(output) || Exists(staging) {
		t.Fatal("expected staging moved onto output")
	}

	stale := StagingPath(output, "dead")
	if err := os.WriteFile(stale, []byte("half"), 0o644); err != nil {
		t.Fatal(err)
	}
	removed, err := CleanStale(dir)
	if err != nil {
		t.Fatalf("CleanStale: %v", err)
	}
	if len(removed) != 1 || removed[0] != stale {
		t.Fatalf("unexpected removed list %v", removed)
	}
	if !Exists(output) {
		t.Fatal("CleanStale must not touch committed artifacts")
	}
	if err := Discard(stale); err != nil {
		t.Fatalf("Discard of missing file: %v", err)
	}
}
