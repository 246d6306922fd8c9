package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestDisplayBufferDrainEmpties(t *testing.T) {
	b := NewDisplayBuffer()
	b.Append("hello ")
	b.Append("world")

	if got := b.Drain(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if got := b.Drain(); got != "" {
		t.Fatalf("second drain not empty: %q", got)
	}

	b.Append("again")
	if got := b.Drain(); got != "again" {
		t.Fatalf("got %q", got)
	}
}

func TestDiagnosticBufferTruncatesOldest(t *testing.T) {
	b := NewDiagnosticBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(fmt.Sprintf("chunk%d;", i))
	}

	window := b.Snapshot()
	if strings.Contains(window, "chunk0") || strings.Contains(window, "chunk1") {
		t.Fatalf("oldest chunks retained: %q", window)
	}
	if !strings.Contains(window, "chunk4") {
		t.Fatalf("newest chunk missing: %q", window)
	}
}

func TestDiagnosticBufferClear(t *testing.T) {
	b := NewDiagnosticBuffer(10)
	b.Append("SyntaxError: invalid syntax\n")
	b.Clear()
	if _, found := b.Scan([]string{"SyntaxError:"}); found {
		t.Fatal("scan matched after clear")
	}
}

func TestScanReturnsSnippetWithContext(t *testing.T) {
	b := NewDiagnosticBuffer(10)
	b.Append("rendering frame 10\n")
	b.Append("SyntaxError: invalid syntax\n  File \"scene.py\", line 4\n\n    bad token\nlater noise\n")

	match, found := b.Scan([]string{"NameError:", "SyntaxError:"})
	if !found {
		t.Fatal("expected match")
	}
	if match.Pattern != "SyntaxError:" {
		t.Fatalf("wrong pattern %q", match.Pattern)
	}
	if !strings.HasPrefix(match.Snippet, "SyntaxError: invalid syntax") {
		t.Fatalf("snippet missing error line: %q", match.Snippet)
	}
	if !strings.Contains(match.Snippet, `File "scene.py", line 4`) {
		t.Fatalf("snippet missing context line: %q", match.Snippet)
	}
	if strings.Contains(match.Snippet, "later noise") {
		t.Fatalf("snippet pulled lines beyond the context window: %q", match.Snippet)
	}
}

func TestScanTruncatesSnippet(t *testing.T) {
	b := NewDiagnosticBuffer(10)
	b.Append("ValueError: " + strings.Repeat("x", 500) + "\n")

	match, found := b.Scan([]string{"ValueError:"})
	if !found {
		t.Fatal("expected match")
	}
	if len(match.Snippet) != snippetLimit {
		t.Fatalf("snippet length %d, want %d", len(match.Snippet), snippetLimit)
	}
}

func TestScanTruncatesOnRuneBoundary(t *testing.T) {
	b := NewDiagnosticBuffer(10)
	// The odd-length prefix puts a byte-wise cut at the limit in the middle
	// of a two-byte rune.
	b.Append("ValueError: x" + strings.Repeat("é", 300) + "\n")

	match, found := b.Scan([]string{"ValueError:"})
	if !found {
		t.Fatal("expected match")
	}
	if len(match.Snippet) > snippetLimit {
		t.Fatalf("snippet length %d exceeds %d", len(match.Snippet), snippetLimit)
	}
	if !utf8.ValidString(match.Snippet) {
		t.Fatalf("snippet is not valid UTF-8: %q", match.Snippet)
	}
}

func TestScanMatchesSpanningChunks(t *testing.T) {
	// A signature split across two reads must still match once both chunks
	// are in the window.
	b := NewDiagnosticBuffer(10)
	b.Append("Module")
	b.Append("NotFoundError: No module named 'manim'\n")

	if _, found := b.Scan([]string{"ModuleNotFoundError:"}); !found {
		t.Fatal("expected match across chunk boundary")
	}
}

func TestContains(t *testing.T) {
	b := NewDiagnosticBuffer(10)
	b.Append("^C\nKeyboardInterrupt\n")
	if !b.Contains("KeyboardInterrupt", "Interrupted") {
		t.Fatal("expected marker hit")
	}
	if b.Contains("Traceback") {
		t.Fatal("unexpected marker hit")
	}
}

func TestBuffersConcurrentAppend(t *testing.T) {
	display := NewDisplayBuffer()
	diag := NewDiagnosticBuffer(100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				display.Append("x")
				diag.Append("y")
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				display.Drain()
				diag.Scan([]string{"never"})
			}
		}()
	}
	wg.Wait()
}
