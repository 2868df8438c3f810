package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voiceblog/internal/config"
	"voiceblog/internal/notifications"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func serviceFor(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := serviceFor("")
	if err := svc.NotifyRunFailed(context.Background(), "7", "step 2", errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run completed",
			send: func(s notifications.Service) error {
				return s.NotifyRunCompleted(context.Background(), "7", 3, 0, 95*time.Second)
			},
			expectTitle:   "voiceblog - Run Complete",
			expectMessage: "Blog post ready for folder 7 (3 steps in 1m35s, 0 skipped)",
			expectTags:    "voiceblog,run,completed",
		},
		{
			name: "run already complete",
			send: func(s notifications.Service) error {
				return s.NotifyRunCompleted(context.Background(), "7", 0, 3, time.Second)
			},
			expectTitle:   "voiceblog - Run Complete",
			expectMessage: "Folder 7 already complete, nothing to do",
			expectTags:    "voiceblog,run,completed",
		},
		{
			name: "run failed",
			send: func(s notifications.Service) error {
				return s.NotifyRunFailed(context.Background(), "9", "step 2 (transcribe)", errors.New("timeout"))
			},
			expectTitle:    "voiceblog - Run Failed",
			expectMessage:  "Folder 9 failed at step 2 (transcribe): timeout",
			expectTags:     "voiceblog,error,alert",
			expectPriority: "high",
		},
		{
			name: "batch with errors",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 4, 1, 2*time.Minute)
			},
			expectTitle:   "voiceblog - Batch Complete (with errors)",
			expectMessage: "Processed 4 folders in 2m0s: 3 succeeded, 1 failed",
			expectTags:    "voiceblog,batch,completed",
		},
		{
			name:           "test",
			send:           func(s notifications.Service) error { return s.TestNotification(context.Background()) },
			expectTitle:    "voiceblog - Test",
			expectMessage:  "Notification system test",
			expectTags:     "voiceblog,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, captured := newNtfyServer(t, http.StatusOK)
			if err := tc.send(serviceFor(srv.URL)); err != nil {
				t.Fatalf("send: %v", err)
			}
			if len(*captured) != 1 {
				t.Fatalf("expected 1 request, got %d", len(*captured))
			}
			got := (*captured)[0]
			if got.title != tc.expectTitle {
				t.Errorf("title = %q, want %q", got.title, tc.expectTitle)
			}
			if got.body != tc.expectMessage {
				t.Errorf("message = %q, want %q", got.body, tc.expectMessage)
			}
			if got.tags != tc.expectTags {
				t.Errorf("tags = %q, want %q", got.tags, tc.expectTags)
			}
			if got.priority != tc.expectPriority {
				t.Errorf("priority = %q, want %q", got.priority, tc.expectPriority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	err := serviceFor(srv.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
