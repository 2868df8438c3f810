package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"voiceblog/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "preprocess", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"preprocess", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"configuration", services.Wrap(services.ErrConfiguration, "transcribe", "init", "api key missing", nil), services.ErrConfiguration},
		{"predecessor", services.Wrap(services.ErrPredecessorMissing, "compose", "", "transcript missing", nil), services.ErrPredecessorMissing},
		{"deadline", fmt.Errorf("llm request: %w", context.DeadlineExceeded), services.ErrTimeout},
		{"canceled", fmt.Errorf("ffmpeg: %w", context.Canceled), services.ErrInterrupted},
		{"tool", services.Wrap(services.ErrExternalTool, "preprocess", "ffmpeg", "exit 1", nil), services.ErrExternalTool},
		{"plain", errors.New("io"), services.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}
