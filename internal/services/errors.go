package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBusy marks admission rejections when a job of either class is active.
	ErrBusy = errors.New("job already active")
	// ErrValidation marks synchronous pre-dispatch failures (no entry point).
	ErrValidation = errors.New("validation error")
	// ErrExternalTool marks failures of the renderer or ffmpeg.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing resources (jobs, artifacts, sockets).
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks watcher hard-timeout expiry.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures that may succeed on retry.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
