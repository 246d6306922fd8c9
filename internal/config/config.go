package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	AssetsDir    string `toml:"assets_dir"`
	PreviewDir   string `toml:"preview_dir"`
	RenderDir    string `toml:"render_dir"`
	LogDir       string `toml:"log_dir"`
	SocketPath   string `toml:"socket_path"`
	SettingsFile string `toml:"settings_file"`
}

// Renderer contains configuration for the external animation renderer and the
// shell session that drives it.
type Renderer struct {
	Binary           string `toml:"binary"`
	VenvDir          string `toml:"venv_dir"`
	FFmpegBinary     string `toml:"ffmpeg_binary"`
	Shell            string `toml:"shell"`
	DefaultQuality   string `toml:"default_quality"`
	DefaultFrameRate int    `toml:"default_frame_rate"`
	TermCols         int    `toml:"term_cols"`
	TermRows         int    `toml:"term_rows"`
}

// Watcher contains timing configuration for job completion watchers.
type Watcher struct {
	PollInterval       int `toml:"poll_interval"`
	ErrorCheckEvery    int `toml:"error_check_every"`
	StartupGrace       int `toml:"startup_grace"`
	SettleDelay        int `toml:"settle_delay"`
	StabilityProbeGap  int `toml:"stability_probe_gap"`
	Timeout            int `toml:"timeout"`
	DiagnosticCapacity int `toml:"diagnostic_capacity"`
	RemuxTimeout       int `toml:"remux_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	JobEvents      bool   `toml:"job_events"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Sceneforge.
//
// Configuration sections by subsystem:
//   - Paths: workspace directories, control socket, and the UI settings file
//   - Renderer: renderer/ffmpeg binaries, venv, shell, and terminal geometry
//   - Watcher: completion watcher polling cadence and timeouts
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Renderer      Renderer      `toml:"renderer"`
	Watcher       Watcher       `toml:"watcher"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sceneforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sceneforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AssetsDir, c.Paths.PreviewDir, c.Paths.RenderDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.SocketPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create socket directory %q: %w", dir, err)
		}
	}
	return nil
}

// RendererBinary returns the renderer executable, preferring the venv install
// when one exists.
func (c *Config) RendererBinary() string {
	if c.Renderer.VenvDir != "" {
		candidate := filepath.Join(c.Renderer.VenvDir, "bin", c.Renderer.Binary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return c.Renderer.Binary
}

// VenvActivateScript returns the activation script path for the configured
// virtual environment, or empty when no venv is configured.
func (c *Config) VenvActivateScript() string {
	if strings.TrimSpace(c.Renderer.VenvDir) == "" {
		return ""
	}
	return filepath.Join(c.Renderer.VenvDir, "bin", "activate")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
