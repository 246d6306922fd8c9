package deps

import (
	"os"
	"path/filepath"
	"testing"

	"sceneforge/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestCheckRendererPrefersVenv(t *testing.T) {
	venv := t.TempDir()
	binDir := filepath.Join(venv, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := []byte("#!/bin/sh\nexit 0\n")
	rendererPath := filepath.Join(binDir, "manim")
	if err := os.WriteFile(rendererPath, script, 0o755); err != nil {
		t.Fatalf("write renderer stub: %v", err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "activate"), []byte("# venv\n"), 0o644); err != nil {
		t.Fatalf("write activate stub: %v", err)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithVenvDir(venv))

	status := CheckRenderer(cfg)
	if !status.Available {
		t.Fatalf("expected venv renderer to be available, got detail %q", status.Detail)
	}
	if status.Command != rendererPath {
		t.Fatalf("expected renderer command %q, got %q", rendererPath, status.Command)
	}
	if status.Detail != "" {
		t.Fatalf("unexpected detail with healthy venv: %s", status.Detail)
	}
}

func TestCheckRendererPathFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("manim"))

	status := CheckRenderer(cfg)
	if !status.Available {
		t.Fatalf("expected PATH renderer to be available, got detail %q", status.Detail)
	}
}

func TestCheckRendererNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRendererBinary("clearly-not-present-renderer"))
	t.Setenv("PATH", "")

	status := CheckRenderer(cfg)
	if status.Available {
		t.Fatal("expected renderer resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when renderer is unavailable")
	}
}

func TestCheckRendererReportsMissingActivateScript(t *testing.T) {
	venv := t.TempDir()
	binDir := filepath.Join(venv, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	rendererPath := filepath.Join(binDir, "manim")
	if err := os.WriteFile(rendererPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write renderer stub: %v", err)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithVenvDir(venv))

	status := CheckRenderer(cfg)
	if !status.Available {
		t.Fatalf("renderer should resolve even without an activate script, got %q", status.Detail)
	}
	if status.Detail == "" {
		t.Fatal("expected missing activation script to be reported")
	}
}
