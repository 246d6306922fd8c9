package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"sceneforge/internal/logs"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daemon.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(result.Lines, []string{"three", "four"}) {
		t.Fatalf("unexpected lines %v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("expected non-zero offset at end of file")
	}
}

func TestTailForwardFromOffset(t *testing.T) {
	path := writeLog(t, "first\n")

	initial, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(initial.Lines, []string{"first"}) {
		t.Fatalf("unexpected lines %v", initial.Lines)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	next, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: initial.Offset})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(next.Lines, []string{"second"}) {
		t.Fatalf("unexpected lines %v", next.Lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTailFollowTimesOut(t *testing.T) {
	path := writeLog(t, "only\n")

	initial, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 0})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	start := time.Now()
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{
		Offset: initial.Offset,
		Follow: true,
		Wait:   50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Tail follow: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines, got %v", result.Lines)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Fatal("expected follow to wait before returning")
	}
}
