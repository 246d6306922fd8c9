package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sceneforge/internal/config"
	"sceneforge/internal/daemon"
	"sceneforge/internal/history"
	"sceneforge/internal/ipc"
	"sceneforge/internal/logging"
	"sceneforge/internal/render"
	"sceneforge/internal/session"
	"sceneforge/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *history.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	logPath    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	sess := session.New(session.Options{
		Shell:              cfg.Renderer.Shell,
		WorkDir:            cfg.Paths.AssetsDir,
		DiagnosticCapacity: cfg.Watcher.DiagnosticCapacity,
		DisablePTY:         true,
		SetupSettle:        10 * time.Millisecond,
	})
	dispatcher := render.NewDispatcher(cfg, sess, store, nil, logging.NewNop())
	logPath := filepath.Join(cfg.Paths.LogDir, "cli-test.log")
	d, err := daemon.New(cfg, store, sess, dispatcher, logging.NewNop(), logPath)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			cancel()
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
		logPath:    logPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got %q", needle, haystack)
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
assets_dir = %q
preview_dir = %q
render_dir = %q
log_dir = %q
socket_path = %q
settings_file = %q

[renderer]
shell = %q
`,
		cfg.Paths.AssetsDir,
		cfg.Paths.PreviewDir,
		cfg.Paths.RenderDir,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
		cfg.Paths.SettingsFile,
		cfg.Renderer.Shell,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestCLIStatusAndHistoryCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Running")
	requireContains(t, out, "Shell Session")
	requireContains(t, out, "Dependencies")

	out, _, err = runCLI(t, []string{"history", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")

	rec, err := env.store.Begin(ctx, history.NewJob{
		Class:      "render",
		SceneName:  "OrbitScene",
		EntryPoint: "OrbitScene",
		Quality:    "1080p",
		FrameRate:  60,
		Format:     "mp4",
		Command:    "manim script.py OrbitScene -qh",
	})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	artifact := filepath.Join(env.cfg.Paths.RenderDir, "OrbitScene.mp4")
	if err := env.store.Finish(ctx, rec.JobID, history.StateSucceeded, artifact, ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "OrbitScene")
	requireContains(t, out, "succeeded")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "History cleared")

	out, _, err = runCLI(t, []string{"history", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history list after clear: %v", err)
	}
	requireContains(t, out, "No jobs recorded")
}

func TestCLITerminalCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"terminal", "send", "echo cli-ping"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("terminal send: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var seen strings.Builder
	for time.Now().Before(deadline) {
		out, _, err := runCLI(t, []string{"terminal", "read"}, env.socketPath, env.configPath)
		if err != nil {
			t.Fatalf("terminal read: %v", err)
		}
		seen.WriteString(out)
		if strings.Contains(seen.String(), "cli-ping") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("terminal output never arrived, saw %q", seen.String())
}

func TestCLICancelWithoutActiveJob(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cancel"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	requireContains(t, out, "No active job")
}

func TestCLILogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := os.WriteFile(env.logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only trailing lines, got %q", out)
	}
}

func TestCLIRenderDispatch(t *testing.T) {
	env := setupCLITestEnv(t)

	scenePath := filepath.Join(testsupport.BaseDir(env.cfg), "scene.py")
	source := "from manim import *\n\nclass DemoScene(Scene):\n    def construct(self):\n        pass\n"
	if err := os.WriteFile(scenePath, []byte(source), 0o644); err != nil {
		t.Fatalf("write scene file: %v", err)
	}

	out, _, err := runCLI(t, []string{"render", scenePath, "--quality", "720p"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "Dispatched render job")
	requireContains(t, out, "DemoScene")

	// The slot stays busy until the watcher resolves the job.
	_, _, err = runCLI(t, []string{"render", scenePath}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected second dispatch to be rejected while busy")
	}

	if _, _, err := runCLI(t, []string{"cancel"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}
