// Package session owns the one persistent interactive shell through which all
// rendering jobs run, plus the two views over its combined output stream: a
// display buffer drained by the UI poll and a bounded diagnostic ring scanned
// for error signatures.
//
// The session prefers a real PTY (progress bars only render on a tty) and
// falls back to plain pipes when allocation fails. Completion of commands sent
// here is never observable as an exit code; the watcher infers it from the
// diagnostic buffer and the filesystem.
package session
