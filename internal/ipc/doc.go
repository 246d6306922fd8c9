// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs
// exchanged between the sceneforge CLI and the daemon. The server embeds
// the daemon and translates RPC calls into dispatcher, terminal, and
// history operations.
package ipc
