// Package config loads, normalizes, and validates the TOML configuration that
// drives the Sceneforge daemon and CLI.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/sceneforge/config.toml, then ./sceneforge.toml, then built-in
// defaults. All path fields are tilde-expanded and made absolute during
// normalization, so downstream packages never deal with relative paths.
package config
