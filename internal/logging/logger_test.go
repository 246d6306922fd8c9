package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestPrettyHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	WithComponent(logger, "watcher").Info("tick", Int("count", 3))

	line := buf.String()
	if !strings.Contains(line, "watcher: tick") {
		t.Fatalf("component not promoted: %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Fatalf("attr missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component leaked as field: %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("dispatch", String("entry_point", "My Scene"))

	if !strings.Contains(buf.String(), `entry_point="My Scene"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestPrettyHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.WithGroup("job").Info("done", String("state", "succeeded"))

	if !strings.Contains(buf.String(), "job.state=succeeded") {
		t.Fatalf("group not flattened: %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
