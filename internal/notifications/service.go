package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sceneforge/internal/config"
)

const userAgent = "Sceneforge/0.1.0"

// Service defines the notification surface exposed to render components.
type Service interface {
	NotifyJobStarted(ctx context.Context, class, entryPoint string) error
	NotifyJobSucceeded(ctx context.Context, class, entryPoint, artifactPath string) error
	NotifyJobFailed(ctx context.Context, class, entryPoint, reason string) error
	NotifyJobCancelled(ctx context.Context, class, entryPoint string) error
	NotifyJobTimedOut(ctx context.Context, class, entryPoint string, after time.Duration) error
	NotifySavePrompt(ctx context.Context, entryPoint, artifactPath string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:  topic,
		client:    client,
		jobEvents: cfg.Notifications.JobEvents,
		errors:    cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	jobEvents bool
	errors    bool
}

func jobLabel(class, entryPoint string) string {
	entryPoint = strings.TrimSpace(entryPoint)
	class = strings.TrimSpace(class)
	if entryPoint == "" {
		return class
	}
	return fmt.Sprintf("%s (%s)", entryPoint, class)
}

func (n *ntfyService) NotifyJobStarted(ctx context.Context, class, entryPoint string) error {
	if !n.jobEvents {
		return nil
	}
	data := payload{
		title:   "Sceneforge - Job Started",
		message: fmt.Sprintf("Started rendering: %s", jobLabel(class, entryPoint)),
		tags:    []string{"sceneforge", "job", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobSucceeded(ctx context.Context, class, entryPoint, artifactPath string) error {
	if !n.jobEvents {
		return nil
	}
	message := fmt.Sprintf("Render complete: %s", jobLabel(class, entryPoint))
	if artifactPath = strings.TrimSpace(artifactPath); artifactPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, artifactPath)
	}
	data := payload{
		title:    "Sceneforge - Complete",
		message:  message,
		tags:     []string{"sceneforge", "job", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, class, entryPoint, reason string) error {
	if !n.jobEvents {
		return nil
	}
	message := fmt.Sprintf("Render failed: %s", jobLabel(class, entryPoint))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Sceneforge - Failed",
		message:  message,
		tags:     []string{"sceneforge", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCancelled(ctx context.Context, class, entryPoint string) error {
	if !n.jobEvents {
		return nil
	}
	data := payload{
		title:   "Sceneforge - Cancelled",
		message: fmt.Sprintf("Render cancelled: %s", jobLabel(class, entryPoint)),
		tags:    []string{"sceneforge", "job", "cancelled"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobTimedOut(ctx context.Context, class, entryPoint string, after time.Duration) error {
	if !n.jobEvents {
		return nil
	}
	after = after.Round(time.Second)
	data := payload{
		title:    "Sceneforge - Timed Out",
		message:  fmt.Sprintf("Render timed out after %s: %s", after, jobLabel(class, entryPoint)),
		tags:     []string{"sceneforge", "job", "timeout"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySavePrompt(ctx context.Context, entryPoint, artifactPath string) error {
	if !n.jobEvents {
		return nil
	}
	data := payload{
		title:   "Sceneforge - Ready to Save",
		message: fmt.Sprintf("Render of %s is ready to save\nFile: %s", strings.TrimSpace(entryPoint), strings.TrimSpace(artifactPath)),
		tags:    []string{"sceneforge", "job", "save"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Sceneforge - Error",
		message:  builder.String(),
		tags:     []string{"sceneforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Sceneforge - Test",
		message:  "Notification system test",
		tags:     []string{"sceneforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyJobStarted(context.Context, string, string) error { return nil }
func (noopService) NotifyJobSucceeded(context.Context, string, string, string) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, string, string) error { return nil }
func (noopService) NotifyJobCancelled(context.Context, string, string) error      { return nil }
func (noopService) NotifyJobTimedOut(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifySavePrompt(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error       { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
