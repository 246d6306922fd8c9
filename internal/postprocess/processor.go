package postprocess

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sceneforge/internal/config"
	"sceneforge/internal/fileutil"
	"sceneforge/internal/logging"
)

// Processor relocates stabilized artifacts out of the renderer's working
// tree and tracks preview copies for later cleanup.
type Processor struct {
	cfg    *config.Config
	logger *slog.Logger

	mu             sync.Mutex
	previewCleanup map[string]struct{}
}

// New builds a Processor. A nil logger falls back to a no-op logger.
func New(cfg *config.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:            cfg,
		logger:         logging.WithComponent(logger, "postprocess"),
		previewCleanup: make(map[string]struct{}),
	}
}

// FinalizeRender moves a render artifact to the render root and tears down
// the renderer's working tree. The caller picks the final save location
// later; the render root is the stable handoff point.
func (p *Processor) FinalizeRender(ctx context.Context, artifactPath, mediaRoot string) (string, error) {
	dest := filepath.Join(mediaRoot, filepath.Base(artifactPath))
	if err := fileutil.RemoveIfExists(dest); err != nil {
		return "", fmt.Errorf("clear destination: %w", err)
	}
	if err := fileutil.MoveFile(artifactPath, dest); err != nil {
		return "", fmt.Errorf("move artifact: %w", err)
	}
	p.removeWorkTrees(mediaRoot)
	p.logger.Info("render artifact finalized", logging.String("path", dest))
	return dest, nil
}

// FinalizePreview copies a preview artifact into the asset root, re-muxing
// MP4s for streaming-friendly playback on the way. The copy is tracked in the
// cleanup set so unsaved previews are removed at shutdown. A failed re-mux
// falls back to a plain copy and never fails the job.
func (p *Processor) FinalizePreview(ctx context.Context, artifactPath, mediaRoot string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.AssetsDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure asset root: %w", err)
	}
	dest := filepath.Join(p.cfg.Paths.AssetsDir, filepath.Base(artifactPath))
	if err := fileutil.RemoveIfExists(dest); err != nil {
		return "", fmt.Errorf("clear destination: %w", err)
	}

	if strings.EqualFold(filepath.Ext(artifactPath), ".mp4") {
		if err := p.remuxFastStart(ctx, artifactPath, dest); err != nil {
			p.logger.Warn("fast-start remux failed, falling back to plain copy",
				logging.String("path", artifactPath), logging.Error(err))
			_ = fileutil.RemoveIfExists(dest)
			if err := fileutil.CopyFileVerified(artifactPath, dest); err != nil {
				return "", fmt.Errorf("copy artifact: %w", err)
			}
		}
	} else {
		if err := fileutil.CopyFileVerified(artifactPath, dest); err != nil {
			return "", fmt.Errorf("copy artifact: %w", err)
		}
	}

	p.TrackPreview(dest)
	p.removeWorkTrees(mediaRoot)
	p.logger.Info("preview artifact finalized", logging.String("path", dest))
	return dest, nil
}

// TrackPreview marks a file for removal when the daemon shuts down.
func (p *Processor) TrackPreview(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.previewCleanup[path] = struct{}{}
}

// KeepPreview removes a file from the cleanup set after the user saved it.
func (p *Processor) KeepPreview(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.previewCleanup, path)
}

// TrackedPreviews returns the files currently scheduled for cleanup, sorted.
func (p *Processor) TrackedPreviews() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	paths := make([]string, 0, len(p.previewCleanup))
	for path := range p.previewCleanup {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// SweepPreviews deletes every tracked preview copy. Best-effort; files that
// fail to delete stay tracked.
func (p *Processor) SweepPreviews() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path := range p.previewCleanup {
		if err := fileutil.RemoveIfExists(path); err != nil {
			p.logger.Warn("preview cleanup failed", logging.String("path", path), logging.Error(err))
			continue
		}
		delete(p.previewCleanup, path)
	}
}

// removeWorkTrees deletes the renderer's videos/ and images/ working
// directories under the media root once their content has been extracted.
func (p *Processor) removeWorkTrees(mediaRoot string) {
	for _, sub := range []string{"videos", "images"} {
		tree := filepath.Join(mediaRoot, sub)
		if err := os.RemoveAll(tree); err != nil {
			p.logger.Warn("could not remove working tree", logging.String("path", tree), logging.Error(err))
		}
	}
}
