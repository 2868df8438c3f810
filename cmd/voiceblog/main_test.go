package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voiceblog/internal/config"
	"voiceblog/internal/job"
	"voiceblog/internal/testsupport"
)

const (
	fakeTranscript = "We walked along the river and talked about slow mornings."
	fakePost       = "# Slow Mornings\n\nA walk by the river.\n\n## What we learned\n\nMornings matter.\n"
)

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	llmRequests *atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, _ := io.ReadAll(r.Body)
		content := fakePost
		if bytes.Contains(body, []byte("input_audio")) {
			content = fakeTranscript
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithLLMKey("test-key"))
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	cfg.LLM.BaseURL = srv.URL
	cfg.Preprocess.FFmpegBinary = writeFakeFFmpeg(t, base)

	configPath := filepath.Join(base, "voiceblog.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, llmRequests: &requests}
}

// writeFakeFFmpeg installs a script that writes an ID3-tagged stub to the
// last argument, which is where the real ffmpeg writes its output.
func writeFakeFFmpeg(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "bin", "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\nprintf 'ID3processed-audio' > \"$last\"\n"
	testsupport.WriteText(t, path, script)
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod fake ffmpeg: %v", err)
	}
	return path
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func mustLayout(t *testing.T, cfg *config.Config, label string) job.Job {
	t.Helper()
	j, err := job.Layout{InputRoot: cfg.InputRoot(), OutputRoot: cfg.OutputRoot()}.Resolve(label)
	if err != nil {
		t.Fatalf("resolve %s: %v", label, err)
	}
	return j
}

func TestRunFolderProducesArtifactsThenSkips(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "7")

	out, _, err := runCLI(t, []string{"run", "--folder", "7"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Folder 7 complete: 3 produced, 0 already present")

	j := mustLayout(t, env.cfg, "7")
	transcript, err := os.ReadFile(j.Transcript)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if strings.TrimSpace(string(transcript)) != fakeTranscript {
		t.Fatalf("unexpected transcript %q", transcript)
	}
	post, err := os.ReadFile(j.BlogPost)
	if err != nil {
		t.Fatalf("read post: %v", err)
	}
	requireContains(t, string(post), "# Slow Mornings")

	before := env.llmRequests.Load()
	out, _, err = runCLI(t, []string{"run", "--folder", "7"}, env.configPath)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	requireContains(t, out, "0 produced, 3 already present")
	if got := env.llmRequests.Load(); got != before {
		t.Fatalf("rerun made %d LLM requests", got-before)
	}
}

func TestRunMissingFolderFails(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--folder", "9"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input folder")
	}
	requireContains(t, out, "missing_input")
	if _, statErr := os.Stat(filepath.Join(env.cfg.OutputRoot(), "9")); !os.IsNotExist(statErr) {
		t.Fatalf("output folder should not exist, stat err = %v", statErr)
	}
}

func TestRunRequiresSelector(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected error without --folder or --all")
	}
	if _, _, err := runCLI(t, []string{"run", "--folder", "1", "--all"}, env.configPath); err == nil {
		t.Fatal("expected error for --folder with --all")
	}
}

func TestRunAllReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "2")
	testsupport.WriteRawAudio(t, env.cfg, "10")

	out, _, err := runCLI(t, []string{"run", "--all", "--steps", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("run --all: %v\n%s", err, out)
	}
	two, ten := strings.Index(out, "│ 2 "), strings.Index(out, "│ 10 ")
	if two < 0 || ten < 0 || two > ten {
		t.Fatalf("expected numeric folder order, got:\n%s", out)
	}
}

func TestStageCommandDirect(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "processed.mp3")
	testsupport.WriteText(t, input, "ID3audio")
	output := filepath.Join(dir, "nested", "transcript.txt")

	out, _, err := runCLI(t, []string{"transcribe", "--input", input, "--output", output}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v\n%s", err, out)
	}
	requireContains(t, out, "Transcribe: succeeded")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected transcript: %v", err)
	}

	out, _, err = runCLI(t, []string{"transcribe", "--input", input, "--output", output}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe rerun: %v", err)
	}
	requireContains(t, out, "Transcribe: skipped")
}

func TestStageCommandMissingPredecessor(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "3")

	out, _, err := runCLI(t, []string{"compose", "--folder", "3"}, env.configPath)
	if err == nil {
		t.Fatal("expected compose to fail without a transcript")
	}
	requireContains(t, out, "missing_predecessor")
}

func TestPreprocessRejectsUnknownFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "4")
	if _, _, err := runCLI(t, []string{"preprocess", "--folder", "4", "--filters", "mono,reverb"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestHistoryListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	testsupport.WriteRawAudio(t, env.cfg, "5")
	if _, _, err := runCLI(t, []string{"run", "--folder", "5", "--steps", "preprocess"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, _, err = runCLI(t, []string{"history", "--folder", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "done")
	requireContains(t, out, "5")
}

func TestStatusShowsManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "6")
	if _, _, err := runCLI(t, []string{"run", "--folder", "6", "--steps", "1"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"status", "--offline", "--folder", "6"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "Input directory")
	requireContains(t, out, "== Folder 6 ==")
	requireContains(t, out, "processed.mp3")
	requireContains(t, out, "missing")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "LLM API key: from config")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, "test-key") {
		t.Fatal("config show leaked the API key")
	}

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestLogFormatFlagValidated(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--log-format", "xml", "history"}, env.configPath); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestTestNotifyDisabledWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}

func TestLogsFiltersByFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(testsupport.BaseDir(env.cfg), "logs")
	env.cfg.Paths.LogDir = logDir
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.WriteText(t, filepath.Join(logDir, "voiceblog.log"),
		"[10:00:00] [INFO] workflow: run started folder=7\n[10:00:01] [INFO] workflow: run started folder=8\n")

	out, _, err := runCLI(t, []string{"logs", "--folder", "8"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "folder=8")
	if strings.Contains(out, "folder=7") {
		t.Fatalf("unexpected line for folder 7 in %q", out)
	}
}

func TestRunFailureEchoesStageOutputWithoutVerbose(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteRawAudio(t, env.cfg, "7")

	broken := filepath.Join(testsupport.BaseDir(env.cfg), "bin", "ffmpeg-broken")
	testsupport.WriteText(t, broken, "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")
	if err := os.Chmod(broken, 0o755); err != nil {
		t.Fatalf("chmod broken ffmpeg: %v", err)
	}
	env.cfg.Preprocess.FFmpegBinary = broken
	writeTestConfig(t, env.configPath, env.cfg)

	stdout, stderr, err := runCLI(t, []string{"run", "--folder", "7"}, env.configPath)
	if err == nil {
		t.Fatal("expected run to fail")
	}
	requireContains(t, stderr, "Invalid data found when processing input")
	if strings.Count(stdout+stderr, "exit status 1: exit status 1") != 0 {
		t.Fatalf("exit status repeated in output: %q", stdout+stderr)
	}
}
