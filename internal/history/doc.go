// Package history persists job outcomes in SQLite.
//
// The Store records one row per dispatched job: the command that was issued,
// the quality and format it was rendered with, and the terminal state it
// reached along with the resulting artifact or error. The dispatcher writes a
// running record at dispatch; the completion watcher finishes it.
//
// Stale running rows left behind by a daemon crash are failed on the next
// startup via CloseStale. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package history
