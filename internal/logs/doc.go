// Package logs provides file tailing and offset helpers shared by the CLI
// and daemon.
//
// It streams log files with bounded memory usage, supports negative offsets
// for "tail last N lines" operations, and powers follow-mode updates for
// the sceneforge logs command.
package logs
