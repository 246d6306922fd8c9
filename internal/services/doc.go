// Package services holds the cross-cutting error taxonomy and context
// annotation helpers shared by the orchestration components.
//
// Sentinel markers classify failures at the IPC and CLI boundaries: admission
// errors (ErrBusy, ErrValidation) are returned synchronously, while detected
// failures and timeouts surface through notifications tagged with
// ErrExternalTool or ErrTimeout.
package services
