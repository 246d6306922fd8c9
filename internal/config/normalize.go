package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRenderer(); err != nil {
		return err
	}
	c.normalizeWatcher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.AssetsDir, err = expandPath(defaulted(c.Paths.AssetsDir, defaultAssetsDir)); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if c.Paths.PreviewDir, err = expandPath(defaulted(c.Paths.PreviewDir, defaultPreviewDir)); err != nil {
		return fmt.Errorf("paths.preview_dir: %w", err)
	}
	if c.Paths.RenderDir, err = expandPath(defaulted(c.Paths.RenderDir, defaultRenderDir)); err != nil {
		return fmt.Errorf("paths.render_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(defaulted(c.Paths.LogDir, defaultLogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.SocketPath, err = expandPath(defaulted(c.Paths.SocketPath, defaultSocketPath)); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if c.Paths.SettingsFile, err = expandPath(defaulted(c.Paths.SettingsFile, defaultSettingsFile)); err != nil {
		return fmt.Errorf("paths.settings_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeRenderer() error {
	c.Renderer.Binary = defaulted(c.Renderer.Binary, defaultRendererBinary)
	c.Renderer.FFmpegBinary = defaulted(c.Renderer.FFmpegBinary, defaultFFmpegBinary)
	c.Renderer.Shell = defaulted(c.Renderer.Shell, defaultShell)
	c.Renderer.DefaultQuality = defaulted(c.Renderer.DefaultQuality, defaultQuality)
	if c.Renderer.DefaultFrameRate <= 0 {
		c.Renderer.DefaultFrameRate = defaultFrameRate
	}
	if c.Renderer.TermCols <= 0 {
		c.Renderer.TermCols = defaultTermCols
	}
	if c.Renderer.TermRows <= 0 {
		c.Renderer.TermRows = defaultTermRows
	}
	if strings.TrimSpace(c.Renderer.VenvDir) != "" {
		expanded, err := expandPath(c.Renderer.VenvDir)
		if err != nil {
			return fmt.Errorf("renderer.venv_dir: %w", err)
		}
		c.Renderer.VenvDir = expanded
	}
	return nil
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.PollInterval <= 0 {
		c.Watcher.PollInterval = defaultPollInterval
	}
	if c.Watcher.ErrorCheckEvery <= 0 {
		c.Watcher.ErrorCheckEvery = defaultErrorCheckEvery
	}
	if c.Watcher.StartupGrace < 0 {
		c.Watcher.StartupGrace = defaultStartupGrace
	}
	if c.Watcher.SettleDelay < 0 {
		c.Watcher.SettleDelay = defaultSettleDelay
	}
	if c.Watcher.StabilityProbeGap <= 0 {
		c.Watcher.StabilityProbeGap = defaultStabilityProbeGap
	}
	if c.Watcher.Timeout <= 0 {
		c.Watcher.Timeout = defaultWatcherTimeout
	}
	if c.Watcher.DiagnosticCapacity <= 0 {
		c.Watcher.DiagnosticCapacity = defaultDiagnosticCapacity
	}
	if c.Watcher.RemuxTimeout <= 0 {
		c.Watcher.RemuxTimeout = defaultRemuxTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func defaulted(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
