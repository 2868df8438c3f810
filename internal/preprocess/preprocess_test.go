package preprocess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"voiceblog/internal/config"
	"voiceblog/internal/services"
)

func defaultOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(&cfg)
}

func TestBuildArgsDefaultChain(t *testing.T) {
	args := BuildArgs(defaultOptions(), "raw.mp3", "out.mp3")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i raw.mp3",
		"-ac 1",
		"-ar 16000",
		"-codec:a libmp3lame -b:a 128k -f mp3 out.mp3",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	idx := slices.Index(args, "-af")
	if idx < 0 {
		t.Fatalf("expected -af in %v", args)
	}
	chain := args[idx+1]
	order := []string{"silenceremove=", "afftdn=nr=12", "loudnorm=I=-20", "acompressor=threshold=-20dB:ratio=4:attack=5:release=50"}
	last := -1
	for _, part := range order {
		pos := strings.Index(chain, part)
		if pos < 0 {
			t.Fatalf("missing %q in chain %q", part, chain)
		}
		if pos < last {
			t.Fatalf("filter %q out of order in %q", part, chain)
		}
		last = pos
	}
	if !strings.Contains(chain, "stop_duration=0.5:stop_threshold=-40dB") {
		t.Fatalf("unexpected silence settings in %q", chain)
	}
	if args[len(args)-1] != "out.mp3" {
		t.Fatalf("output must be last, got %v", args)
	}
}

func TestBuildArgsSubset(t *testing.T) {
	opts := defaultOptions()
	opts.Filters = []string{FilterNormalize}
	args := BuildArgs(opts, "in", "out")
	if slices.Contains(args, "-ac") || slices.Contains(args, "-ar") {
		t.Fatalf("mono/optimize disabled but present: %v", args)
	}
	idx := slices.Index(args, "-af")
	if idx < 0 || args[idx+1] != "loudnorm=I=-20:TP=-1.5:LRA=11" {
		t.Fatalf("unexpected chain in %v", args)
	}

	opts.Filters = nil
	if slices.Contains(BuildArgs(opts, "in", "out"), "-af") {
		t.Fatal("no filters should produce no -af")
	}
}

func TestBuildArgsSilenceKeepsPadding(t *testing.T) {
	opts := defaultOptions()
	opts.Filters = []string{FilterSilence}
	args := BuildArgs(opts, "in", "out")
	chain := args[slices.Index(args, "-af")+1]
	for _, want := range []string{"start_silence=0.3", "stop_silence=0.3", "stop_duration=0.5", "start_threshold=-40dB"} {
		if !strings.Contains(chain, want) {
			t.Fatalf("expected %q in %q", want, chain)
		}
	}

	opts.SilencePaddingMillis = 0
	chain = BuildArgs(opts, "in", "out")[slices.Index(args, "-af")+1]
	if !strings.Contains(chain, "stop_silence=0") || strings.Contains(chain, "stop_silence=0.3") {
		t.Fatalf("expected zero padding in %q", chain)
	}
}

func TestParseFilters(t *testing.T) {
	got, err := ParseFilters(" Noise, mono ,noise")
	if err != nil {
		t.Fatalf("ParseFilters: %v", err)
	}
	if strings.Join(got, ",") != "noise,mono" {
		t.Fatalf("unexpected filters %v", got)
	}
	if all, _ := ParseFilters("all"); len(all) != len(config.DefaultFilters) {
		t.Fatalf("all should select every filter, got %v", all)
	}
	if none, _ := ParseFilters("none"); len(none) != 0 {
		t.Fatalf("none should select nothing, got %v", none)
	}
	if _, err := ParseFilters("reverb"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateMP3(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]byte{
		"id3.mp3":  []byte("ID3\x04\x00"),
		"sync.mp3": {0xFF, 0xFB, 0x90, 0x00},
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := ValidateMP3(path); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	bad := filepath.Join(dir, "bad.mp3")
	if err := os.WriteFile(bad, []byte("RIFF...."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateMP3(bad); err == nil {
		t.Fatal("expected error for wav header")
	}
}

func TestOperationRunsConfiguredBinary(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\necho \"ffmpeg $*\" >&2\nprintf 'ID3stub' > \"$last\"\n"
	if err := os.WriteFile(ffmpeg, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	opts := defaultOptions()
	opts.Binary = ffmpeg
	op := NewOperation(opts)

	if h := op.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected healthy operation, got %+v", h)
	}

	output := filepath.Join(dir, "processed.mp3")
	var diag strings.Builder
	if err := op.Invoke(context.Background(), filepath.Join(dir, "raw.mp3"), output, &diag); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if err := ValidateMP3(output); err != nil {
		t.Fatalf("stub output invalid: %v", err)
	}
	if !strings.Contains(diag.String(), "libmp3lame") {
		t.Fatalf("expected ffmpeg stderr captured, got %q", diag.String())
	}
}

func TestOperationMissingBinaryIsUnhealthy(t *testing.T) {
	opts := defaultOptions()
	opts.Binary = filepath.Join(t.TempDir(), "nope", "ffmpeg")
	if h := NewOperation(opts).HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy operation")
	}
}
