// Package settings reads the runtime settings document shared with the
// desktop frontend. The document is a small JSON file that the frontend
// rewrites whenever the user toggles an option, so it is re-read at every
// job dispatch rather than cached.
package settings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// Settings holds the user-adjustable options consulted at dispatch time.
type Settings struct {
	// DisableCache maps to the renderer's --disable_caching flag.
	DisableCache bool `json:"disable_cache"`
}

// Default returns the settings applied when no document exists.
func Default() Settings {
	return Settings{DisableCache: true}
}

// Load reads the settings document at path. A missing file yields the
// defaults without error; a malformed file also falls back to defaults so a
// half-written document from the frontend never blocks a dispatch.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// Save writes the settings document at path, creating it if necessary.
func Save(path string, cfg Settings) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
