package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sceneforge/internal/config"
	"sceneforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobStarted(context.Background(), "render", "Demo"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "job started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobStarted(context.Background(), "render", "Demo")
			},
			expectTitle:   "Sceneforge - Job Started",
			expectMessage: "Started rendering: Demo (render)",
			expectTags:    "sceneforge,job,started",
		},
		{
			name: "job succeeded",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobSucceeded(context.Background(), "render", "Demo", "/renders/Demo.mp4")
			},
			expectTitle:    "Sceneforge - Complete",
			expectMessage:  "Render complete: Demo (render)\nFile: /renders/Demo.mp4",
			expectTags:     "sceneforge,job,completed",
			expectPriority: "high",
		},
		{
			name: "job failed carries the detected signature",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobFailed(context.Background(), "render", "Demo", "SyntaxError: invalid syntax")
			},
			expectTitle:    "Sceneforge - Failed",
			expectMessage:  "Render failed: Demo (render)\nSyntaxError: invalid syntax",
			expectTags:     "sceneforge,job,failed",
			expectPriority: "high",
		},
		{
			name: "job timed out",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobTimedOut(context.Background(), "render", "Demo", 2*time.Hour)
			},
			expectTitle:    "Sceneforge - Timed Out",
			expectMessage:  "Render timed out after 2h0m0s: Demo (render)",
			expectTags:     "sceneforge,job,timeout",
			expectPriority: "high",
		},
		{
			name: "save prompt",
			notify: func(svc notifications.Service) error {
				return svc.NotifySavePrompt(context.Background(), "Demo", "/previews/Demo.mp4")
			},
			expectTitle:   "Sceneforge - Ready to Save",
			expectMessage: "Render of Demo is ready to save\nFile: /previews/Demo.mp4",
			expectTags:    "sceneforge,job,save",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("socket closed"), "dispatch")
			},
			expectTitle:    "Sceneforge - Error",
			expectMessage:  "Error with dispatch: socket closed",
			expectTags:     "sceneforge,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.JobEvents = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsSuppressionFlags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.JobEvents = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobStarted(context.Background(), "render", "Demo"); err != nil {
		t.Fatalf("expected no error for suppressed job event, got %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "watcher"); err != nil {
		t.Fatalf("expected no error for suppressed error event, got %v", err)
	}
}
