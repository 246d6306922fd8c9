// Package testsupport provides helpers for seeding configs, files, and
// stores in tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sceneforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AssetsDir = filepath.Join(base, "assets")
	cfgVal.Paths.PreviewDir = filepath.Join(base, "previews")
	cfgVal.Paths.RenderDir = filepath.Join(base, "renders")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "sceneforge.sock")
	cfgVal.Paths.SettingsFile = filepath.Join(base, "settings.json")
	cfgVal.Renderer.Shell = "/bin/sh"
	cfgVal.Renderer.VenvDir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithRendererBinary overrides the renderer binary on the test config.
func WithRendererBinary(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.Binary = binary
	}
}

// WithVenvDir points the test config at a virtual environment directory.
func WithVenvDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.VenvDir = dir
	}
}

// WithWatcherTimings compresses watcher cadence for fast tests.
func WithWatcherTimings(pollInterval, startupGrace, timeout int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watcher.PollInterval = pollInterval
		b.cfg.Watcher.StartupGrace = startupGrace
		b.cfg.Watcher.Timeout = timeout
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"manim", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.AssetsDir)
}
