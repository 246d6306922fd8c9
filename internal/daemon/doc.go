// Package daemon coordinates the long-running Sceneforge process.
//
// It wires configuration, the job history store, the persistent shell
// session, and the render dispatcher into a single lifecycle with
// flock-based locking to prevent multiple daemon instances. The daemon is
// the only owner of the shell session; the IPC layer exposes its methods
// to CLI clients.
package daemon
