package session

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New(Options{
		Shell:       "/bin/sh",
		WorkDir:     t.TempDir(),
		DisablePTY:  true,
		SetupSettle: 50 * time.Millisecond,
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func waitForOutput(t *testing.T, s *Session, want string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var collected strings.Builder
	for time.Now().Before(deadline) {
		collected.WriteString(s.Display().Drain())
		if strings.Contains(collected.String(), want) {
			return collected.String()
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("output %q not seen; collected %q", want, collected.String())
	return ""
}

func TestSessionEchoReachesBothBuffers(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Running() {
		t.Fatal("session not running")
	}

	if err := s.WriteLine("echo marker-abc123"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	waitForOutput(t, s, "marker-abc123")
	if !s.Diagnostics().Contains("marker-abc123") {
		t.Fatal("diagnostic buffer missed the chunk")
	}
}

func TestSessionStartIdempotent(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
}

func TestSessionResizeNoopInPipeMode(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.PTYActive() {
		t.Skip("pty unexpectedly active")
	}
	if err := s.Resize(80, 24); err != nil {
		t.Fatalf("Resize should be a no-op: %v", err)
	}
	if err := s.Resize(0, 24); err == nil {
		t.Fatal("expected error for invalid size")
	}
}

func TestSessionWriteBeforeStart(t *testing.T) {
	s := New(Options{Shell: "/bin/sh", DisablePTY: true})
	if err := s.Write("x"); err == nil {
		t.Fatal("expected error writing to unstarted session")
	}
}

func TestSessionCloseStopsShell(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for s.Running() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if s.Running() {
		t.Fatal("shell still running after Close")
	}
}

func TestSessionLineEnding(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.LineEnding(); got != "\n" {
		t.Fatalf("pipe mode line ending %q", got)
	}
}
