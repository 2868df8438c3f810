package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voiceblog/internal/config"
)

const userAgent = "voiceblog/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyRunCompleted(ctx context.Context, folder string, produced, skipped int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, folder, step string, err error) error
	NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, folder string, produced, skipped int, duration time.Duration) error {
	folder = strings.TrimSpace(folder)
	message := fmt.Sprintf("Blog post ready for folder %s", folder)
	if produced == 0 {
		message = fmt.Sprintf("Folder %s already complete, nothing to do", folder)
	} else {
		message = fmt.Sprintf("%s (%d steps in %s, %d skipped)", message, produced, formatDuration(duration), skipped)
	}
	return n.send(ctx, payload{
		title:   "voiceblog - Run Complete",
		message: message,
		tags:    []string{"voiceblog", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, folder, step string, err error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Folder %s failed", strings.TrimSpace(folder))
	if step = strings.TrimSpace(step); step != "" {
		builder.WriteString(" at ")
		builder.WriteString(step)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "voiceblog - Run Failed",
		message:  builder.String(),
		tags:     []string{"voiceblog", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	title := "voiceblog - Batch Complete"
	message := fmt.Sprintf("Processed %d folders in %s", processed, formatDuration(duration))
	if failed > 0 {
		title = "voiceblog - Batch Complete (with errors)"
		message = fmt.Sprintf("Processed %d folders in %s: %d succeeded, %d failed",
			processed, formatDuration(duration), processed-failed, failed)
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"voiceblog", "batch", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "voiceblog - Test",
		message:  "Notification system test",
		tags:     []string{"voiceblog", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error              { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error       { return nil }
func (noopService) TestNotification(context.Context) error                                    { return nil }
