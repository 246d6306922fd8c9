package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("exit status 1")
	err := Wrap(ErrExternalTool, "dispatcher", "send command", "renderer invocation failed", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, base) {
		t.Fatal("cause lost")
	}
	want := "external tool error: dispatcher: send command: renderer invocation failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "watcher", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected transient fallback marker")
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := Wrap(ErrBusy, "", "", "", nil)
	if err.Error() != "job already active: service failure" {
		t.Fatalf("got %q", err.Error())
	}
}
