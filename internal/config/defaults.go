package config

const (
	defaultAssetsDir    = "~/.local/share/sceneforge/assets"
	defaultPreviewDir   = "~/.local/share/sceneforge/preview"
	defaultRenderDir    = "~/.local/share/sceneforge/render"
	defaultLogDir       = "~/.local/share/sceneforge/logs"
	defaultSocketPath   = "~/.local/share/sceneforge/sceneforged.sock"
	defaultSettingsFile = "~/.config/sceneforge/settings.json"

	defaultRendererBinary = "manim"
	defaultFFmpegBinary   = "ffmpeg"
	defaultShell          = "/bin/bash"
	defaultQuality        = "720p"
	defaultFrameRate      = 30
	defaultTermCols       = 120
	defaultTermRows       = 30

	defaultPollInterval       = 2
	defaultErrorCheckEvery    = 5
	defaultStartupGrace       = 3
	defaultSettleDelay        = 3
	defaultStabilityProbeGap  = 1
	defaultWatcherTimeout     = 7200
	defaultDiagnosticCapacity = 1000
	defaultRemuxTimeout       = 60

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir:    defaultAssetsDir,
			PreviewDir:   defaultPreviewDir,
			RenderDir:    defaultRenderDir,
			LogDir:       defaultLogDir,
			SocketPath:   defaultSocketPath,
			SettingsFile: defaultSettingsFile,
		},
		Renderer: Renderer{
			Binary:           defaultRendererBinary,
			FFmpegBinary:     defaultFFmpegBinary,
			Shell:            defaultShell,
			DefaultQuality:   defaultQuality,
			DefaultFrameRate: defaultFrameRate,
			TermCols:         defaultTermCols,
			TermRows:         defaultTermRows,
		},
		Watcher: Watcher{
			PollInterval:       defaultPollInterval,
			ErrorCheckEvery:    defaultErrorCheckEvery,
			StartupGrace:       defaultStartupGrace,
			SettleDelay:        defaultSettleDelay,
			StabilityProbeGap:  defaultStabilityProbeGap,
			Timeout:            defaultWatcherTimeout,
			DiagnosticCapacity: defaultDiagnosticCapacity,
			RemuxTimeout:       defaultRemuxTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			JobEvents:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
