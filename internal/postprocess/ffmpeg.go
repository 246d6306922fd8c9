package postprocess

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// remuxFastStart rewrites an MP4 so its playback metadata precedes the media
// data, copying streams without re-encoding. The output lands directly at
// dest, so the remux doubles as the copy step.
func (p *Processor) remuxFastStart(ctx context.Context, src, dest string) error {
	binary := strings.TrimSpace(p.cfg.Renderer.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}

	timeout := time.Duration(p.cfg.Watcher.RemuxTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary,
		"-y",
		"-i", src,
		"-c", "copy",
		"-movflags", "+faststart",
		dest,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 500 {
			detail = detail[len(detail)-500:]
		}
		if detail != "" {
			return fmt.Errorf("ffmpeg remux: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg remux: %w", err)
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("ffmpeg remux produced no output: %w", err)
	}
	return nil
}
