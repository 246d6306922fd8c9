// Package logging assembles the structured slog loggers used across
// Sceneforge.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so components emit log lines with a
// consistent shape. Prefer these constructors over hand-rolled slog setup.
package logging
