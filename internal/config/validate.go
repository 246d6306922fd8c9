package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRenderer() error {
	if c.Renderer.Binary == "" {
		return errors.New("renderer.binary must be set")
	}
	if c.Renderer.Shell == "" {
		return errors.New("renderer.shell must be set")
	}
	if c.Renderer.DefaultFrameRate <= 0 || c.Renderer.DefaultFrameRate > 240 {
		return fmt.Errorf("renderer.default_frame_rate must be between 1 and 240, got %d", c.Renderer.DefaultFrameRate)
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if err := ensurePositiveMap(map[string]int{
		"watcher.poll_interval":       c.Watcher.PollInterval,
		"watcher.error_check_every":   c.Watcher.ErrorCheckEvery,
		"watcher.stability_probe_gap": c.Watcher.StabilityProbeGap,
		"watcher.timeout":             c.Watcher.Timeout,
		"watcher.diagnostic_capacity": c.Watcher.DiagnosticCapacity,
		"watcher.remux_timeout":       c.Watcher.RemuxTimeout,
	}); err != nil {
		return err
	}
	if c.Watcher.Timeout <= c.Watcher.PollInterval {
		return errors.New("watcher.timeout must be greater than watcher.poll_interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
