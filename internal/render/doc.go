// Package render orchestrates animation jobs through the shell session.
//
// A Dispatcher validates requests, enforces the single-flight policy via the
// Guard, writes the quoted renderer command into the session, and spawns one
// completion watcher per job. Watchers are poll-driven state machines: with
// no exit code observable through the interactive shell, they infer the
// outcome from error signatures in the diagnostic buffer and artifact
// stability in the media directory, then hand stabilized artifacts to the
// post-processing pipeline.
//
// Every terminal path, including faults inside the watcher itself, releases
// the guard and removes the job's temp script.
package render
