package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voiceblog/internal/config"
	"voiceblog/internal/logging"
	"voiceblog/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello file")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "voiceblog.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello file") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "workflow")
	logger.Info("stage started", logging.String("stage", "preprocess"), logging.String("path", "a b"))
	logging.Success(logger, "stage completed")
	logger.Error("stage failed", logging.Error(errors.New("exit status 1")))
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.Contains(lines[0], "] [INFO] workflow: stage started") {
		t.Fatalf("unexpected info line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "stage=preprocess") || !strings.Contains(lines[0], `path="a b"`) {
		t.Fatalf("expected attributes in %q", lines[0])
	}
	if !strings.Contains(lines[1], "[SUCCESS] workflow: stage completed") {
		t.Fatalf("unexpected success line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR]") || !strings.Contains(lines[2], `error="exit status 1"`) {
		t.Fatalf("unexpected error line: %q", lines[2])
	}
}

func TestJSONFormatUsesLowercaseLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.Success(logger, "done")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload["level"] != "success" {
		t.Fatalf("expected success level, got %v", payload["level"])
	}
	if payload["msg"] != "done" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(services.WithStage(services.WithFolder(context.Background(), "7"), "compose"), "abc")
	logging.WithContext(ctx, logger).Info("tagged")

	out := buf.String()
	for _, fragment := range []string{"folder=7", "stage=compose", "run_id=abc"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}

func TestForStageOverride(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	overrides := map[string]string{"transcribe": "warn"}

	logging.ForStage(logger, overrides, "Transcribe").Info("suppressed")
	logging.ForStage(logger, overrides, "compose").Debug("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("expected info to be filtered for transcribe, got %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("expected compose debug line, got %q", out)
	}
	if got := logging.MinLevel("info", overrides); got != "info" {
		t.Fatalf("MinLevel = %q, want info", got)
	}
	if got := logging.MinLevel("info", map[string]string{"compose": "debug"}); got != "debug" {
		t.Fatalf("MinLevel = %q, want debug", got)
	}
}

func TestParseLevel(t *testing.T) {
	if logging.ParseLevel("SUCCESS") != logging.LevelSuccess {
		t.Fatal("expected success level")
	}
	if logging.ParseLevel("bogus").String() != "INFO" {
		t.Fatal("expected unknown levels to map to info")
	}
}

func TestErrorWithContextAddsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.ErrorWithContext(logger, "stage failed", "stage_failure", logging.String("reason", "timeout"))
	logging.ErrorWithContext(logger, "init failed", "run_failed", logging.String(logging.FieldErrorHint, "set an API key"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "event_type=stage_failure") || !strings.Contains(lines[0], "error_hint=") {
		t.Fatalf("expected injected defaults in %q", lines[0])
	}
	if strings.Count(lines[1], "error_hint=") != 1 || !strings.Contains(lines[1], `error_hint="set an API key"`) {
		t.Fatalf("expected caller hint to be kept in %q", lines[1])
	}
}
