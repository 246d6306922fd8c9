package render

// errorSignatures are the output markers that indicate a failed job, checked
// in order of specificity. A bare traceback header is included because some
// failures surface without a recognizable exception name.
var errorSignatures = []string{
	"SyntaxError:",
	"NameError:",
	"ImportError:",
	"ModuleNotFoundError:",
	"AttributeError:",
	"TypeError:",
	"ValueError:",
	"IndentationError:",
	"Traceback (most recent call last)",
	"manim.utils.module_ops.SceneNotFound",
	"FileNotFoundError:",
	"Exception:",
}

// interruptMarkers indicate the user interrupted the foreground job from the
// terminal rather than through Stop.
var interruptMarkers = []string{"KeyboardInterrupt", "^C", "Interrupted"}
