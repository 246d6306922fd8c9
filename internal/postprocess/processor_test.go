package postprocess_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sceneforge/internal/postprocess"
	"sceneforge/internal/testsupport"
)

func stubFFmpeg(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	return path
}

// copyingFFmpeg mimics a successful remux by copying the input (third
// argument) to the output (last argument).
const copyingFFmpeg = `#!/bin/sh
for last; do :; done
cp "$3" "$last"
`

func TestFinalizeRenderMovesArtifactAndRemovesWorkTree(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proc := postprocess.New(cfg, nil)

	mediaRoot := cfg.Paths.RenderDir
	artifact := filepath.Join(mediaRoot, "videos", "scene", "1080p60", "Demo.mp4")
	testsupport.WriteFile(t, artifact, 2048)

	final, err := proc.FinalizeRender(context.Background(), artifact, mediaRoot)
	if err != nil {
		t.Fatalf("FinalizeRender: %v", err)
	}
	if final != filepath.Join(mediaRoot, "Demo.mp4") {
		t.Fatalf("unexpected final path %q", final)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(mediaRoot, "videos")); !os.IsNotExist(err) {
		t.Fatal("expected videos working tree to be removed")
	}
}

func TestFinalizePreviewRemuxesIntoAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Renderer.FFmpegBinary = stubFFmpeg(t, copyingFFmpeg)
	proc := postprocess.New(cfg, nil)

	mediaRoot := cfg.Paths.PreviewDir
	artifact := filepath.Join(mediaRoot, "videos", "scene", "480p15", "Demo.mp4")
	testsupport.WriteFile(t, artifact, 4096)

	final, err := proc.FinalizePreview(context.Background(), artifact, mediaRoot)
	if err != nil {
		t.Fatalf("FinalizePreview: %v", err)
	}
	if final != filepath.Join(cfg.Paths.AssetsDir, "Demo.mp4") {
		t.Fatalf("unexpected final path %q", final)
	}
	info, err := os.Stat(final)
	if err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("expected 4096 bytes, got %d", info.Size())
	}

	tracked := proc.TrackedPreviews()
	if len(tracked) != 1 || tracked[0] != final {
		t.Fatalf("expected preview to be tracked for cleanup, got %v", tracked)
	}
}

func TestFinalizePreviewFallsBackToPlainCopy(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Renderer.FFmpegBinary = stubFFmpeg(t, "#!/bin/sh\nexit 1\n")
	proc := postprocess.New(cfg, nil)

	mediaRoot := cfg.Paths.PreviewDir
	artifact := filepath.Join(mediaRoot, "videos", "scene", "480p15", "Demo.mp4")
	testsupport.WriteFile(t, artifact, 1024)

	final, err := proc.FinalizePreview(context.Background(), artifact, mediaRoot)
	if err != nil {
		t.Fatalf("FinalizePreview: %v", err)
	}
	info, err := os.Stat(final)
	if err != nil {
		t.Fatalf("final artifact missing after fallback: %v", err)
	}
	if info.Size() != 1024 {
		t.Fatalf("expected fallback copy of 1024 bytes, got %d", info.Size())
	}
}

func TestFinalizePreviewCopiesNonVideoDirectly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Renderer.FFmpegBinary = stubFFmpeg(t, "#!/bin/sh\nexit 1\n")
	proc := postprocess.New(cfg, nil)

	mediaRoot := cfg.Paths.PreviewDir
	artifact := filepath.Join(mediaRoot, "images", "scene", "Demo.png")
	testsupport.WriteFile(t, artifact, 256)

	final, err := proc.FinalizePreview(context.Background(), artifact, mediaRoot)
	if err != nil {
		t.Fatalf("FinalizePreview: %v", err)
	}
	if filepath.Ext(final) != ".png" {
		t.Fatalf("unexpected final path %q", final)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}
}

func TestSweepPreviews(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	proc := postprocess.New(cfg, nil)

	kept := filepath.Join(cfg.Paths.AssetsDir, "kept.mp4")
	swept := filepath.Join(cfg.Paths.AssetsDir, "swept.mp4")
	testsupport.WriteFile(t, kept, 100)
	testsupport.WriteFile(t, swept, 100)

	proc.TrackPreview(kept)
	proc.TrackPreview(swept)
	proc.KeepPreview(kept)

	proc.SweepPreviews()

	if _, err := os.Stat(kept); err != nil {
		t.Fatal("saved preview must survive the sweep")
	}
	if _, err := os.Stat(swept); !os.IsNotExist(err) {
		t.Fatal("unsaved preview must be deleted by the sweep")
	}
	if len(proc.TrackedPreviews()) != 0 {
		t.Fatal("cleanup set should be empty after sweep")
	}
}
