package session

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// DisplayBuffer accumulates terminal output for a single polling consumer.
// Drain returns everything appended since the last drain and empties the
// buffer; appends come from the session reader goroutine.
type DisplayBuffer struct {
	mu     sync.Mutex
	chunks []string
}

// NewDisplayBuffer returns an empty display buffer.
func NewDisplayBuffer() *DisplayBuffer {
	return &DisplayBuffer{}
}

// Append adds a chunk of terminal output.
func (b *DisplayBuffer) Append(chunk string) {
	if chunk == "" {
		return
	}
	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	b.mu.Unlock()
}

// Drain atomically returns all buffered content and empties the buffer.
func (b *DisplayBuffer) Drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return ""
	}
	out := strings.Join(b.chunks, "")
	b.chunks = nil
	return out
}

// Reset discards all buffered content.
func (b *DisplayBuffer) Reset() {
	b.mu.Lock()
	b.chunks = nil
	b.mu.Unlock()
}

// Match describes a located error signature and its user-facing context.
type Match struct {
	Pattern string
	Snippet string
}

// snippetLimit bounds the extracted context handed to failure notifications.
const snippetLimit = 200

// DiagnosticBuffer is a bounded ring of terminal output chunks retained for
// error-signature scanning. It survives display drains and is cleared exactly
// once per job, at dispatch time, so stale errors from a previous job cannot
// leak into the new job's detection window.
type DiagnosticBuffer struct {
	mu       sync.Mutex
	capacity int
	chunks   []string
}

// NewDiagnosticBuffer returns a ring buffer retaining at most capacity chunks.
func NewDiagnosticBuffer(capacity int) *DiagnosticBuffer {
	if capacity <= 0 {
		capacity = 1000
	}
	return &DiagnosticBuffer{capacity: capacity}
}

// Append adds a chunk, truncating the oldest entries on overflow.
func (b *DiagnosticBuffer) Append(chunk string) {
	if chunk == "" {
		return
	}
	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	if len(b.chunks) > b.capacity {
		b.chunks = b.chunks[len(b.chunks)-b.capacity:]
	}
	b.mu.Unlock()
}

// Clear empties the retained window.
func (b *DiagnosticBuffer) Clear() {
	b.mu.Lock()
	b.chunks = nil
	b.mu.Unlock()
}

// Snapshot returns the retained window as a single string.
func (b *DiagnosticBuffer) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.chunks, "")
}

// Contains reports whether any of the markers appears in the retained window.
func (b *DiagnosticBuffer) Contains(markers ...string) bool {
	window := b.Snapshot()
	for _, marker := range markers {
		if marker != "" && strings.Contains(window, marker) {
			return true
		}
	}
	return false
}

// Scan checks the retained window for the first of the given patterns, in
// order. On a hit it returns the matching line plus up to two following
// non-empty lines, truncated to 200 characters, for user-facing reporting.
func (b *DiagnosticBuffer) Scan(patterns []string) (Match, bool) {
	window := b.Snapshot()
	for _, pattern := range patterns {
		if pattern == "" || !strings.Contains(window, pattern) {
			continue
		}
		return Match{Pattern: pattern, Snippet: extractSnippet(window, pattern)}, true
	}
	return Match{}, false
}

func extractSnippet(window, pattern string) string {
	lines := strings.Split(window, "\n")
	for i, line := range lines {
		if !strings.Contains(line, pattern) {
			continue
		}
		snippet := strings.TrimSpace(line)
		for j := i + 1; j < len(lines) && j <= i+2; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			snippet += " " + next
		}
		return truncate(snippet, snippetLimit)
	}
	return truncate(pattern, snippetLimit)
}

// truncate trims s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
