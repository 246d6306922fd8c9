// Package postprocess finalizes stabilized render artifacts: relocation out
// of the renderer's working tree, streaming-friendly re-muxing for previews,
// and cleanup tracking for preview copies the user never saves.
package postprocess
