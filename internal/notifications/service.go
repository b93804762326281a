package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RaduRS/automan-sub000/internal/config"
)

const userAgent = "Automan-Go/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyRenderCompleted(ctx context.Context, title, output string, duration float64, elapsed time.Duration) error
	NotifyNarrationTimed(ctx context.Context, title string, scenes int) error
	NotifyError(ctx context.Context, err error, label string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic is
// configured, and a no-op otherwise.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		complete: cfg.Notifications.RenderComplete,
		errors:   cfg.Notifications.Errors,
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
	complete bool
	errors   bool
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, title, output string, duration float64, elapsed time.Duration) error {
	if !n.complete {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "short"
	}
	message := fmt.Sprintf("✅ Rendered %s (%.1fs of video in %s)", title, duration, elapsed.Round(time.Second))
	if output = strings.TrimSpace(output); output != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, output)
	}
	return n.send(ctx, payload{
		title:    "Automan - Render Complete",
		message:  message,
		tags:     []string{"automan", "render", "completed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyNarrationTimed(ctx context.Context, title string, scenes int) error {
	if !n.complete {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Automan - Narration Timed",
		message: fmt.Sprintf("🎙️ %s: narration split across %d scenes", strings.TrimSpace(title), scenes),
		tags:    []string{"automan", "narration", "timed"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, label string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if label = strings.TrimSpace(label); label != "" {
		builder.WriteString(" with ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Automan - Error",
		message:  builder.String(),
		tags:     []string{"automan", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Automan - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"automan", "test"},
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

type noopService struct{}

func (noopService) NotifyRenderCompleted(context.Context, string, string, float64, time.Duration) error {
	return nil
}
func (noopService) NotifyNarrationTimed(context.Context, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
