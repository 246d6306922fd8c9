package render

import (
	"strconv"
	"strings"
)

// commandSpec carries everything needed to build one renderer invocation.
type commandSpec struct {
	Binary       string
	ScriptPath   string
	EntryPoint   string
	QualityFlag  string
	MediaDir     string
	FrameRate    int
	Format       string
	DisableCache bool
	ProgressBar  bool
	Accelerated  bool
}

// args assembles the renderer argument vector in the order the renderer
// documents: positionals first, then overrides.
func (c commandSpec) args() []string {
	args := []string{c.ScriptPath, c.EntryPoint, c.QualityFlag}
	args = append(args, "--media_dir", c.MediaDir)
	// Frame rate is always passed explicitly so a custom rate works with any
	// quality preset.
	args = append(args, "--frame_rate", strconv.Itoa(c.FrameRate))
	if format := strings.ToLower(strings.TrimSpace(c.Format)); format != "" && format != "mp4" {
		args = append(args, "--format", format)
	}
	if c.DisableCache {
		args = append(args, "--disable_caching")
	}
	if c.ProgressBar {
		args = append(args, "--progress_bar", "display")
	}
	if c.Accelerated {
		args = append(args, "--renderer=opengl")
	}
	return args
}

// line renders the full quoted command string sent to the shell.
func (c commandSpec) line() string {
	parts := make([]string, 0, 16)
	parts = append(parts, quoteArg(c.Binary))
	for _, arg := range c.args() {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// quoteArg double-quotes arguments containing whitespace or path separators.
// Arguments are otherwise passed unescaped; callers must ensure no argument
// contains the quote character itself.
func quoteArg(arg string) string {
	if strings.ContainsAny(arg, " \t/\\") {
		return `"` + arg + `"`
	}
	return arg
}
