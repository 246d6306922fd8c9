// Package gpu probes for a graphics adapter to decide whether accelerated
// rendering can be requested. Any detected adapter, discrete or integrated,
// permits acceleration; absence downgrades to software rendering.
package gpu

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Info describes the probe outcome.
type Info struct {
	// Available reports whether the accelerated renderer flag may be used.
	Available bool
	// Discrete reports whether the adapter looks like a dedicated card.
	Discrete bool
	// Description is a human-readable adapter summary.
	Description string
}

var discreteKeywords = []string{"nvidia", "geforce", "rtx", "gtx", "quadro", "amd", "radeon", " rx "}

var integratedKeywords = []string{"intel", "uhd", "iris", "hd graphics"}

const probeTimeout = 5 * time.Second

// listAdapters returns one line per display adapter. Overridable in tests.
var listAdapters = func(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, "lspci").Output()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "vga compatible controller") ||
			strings.Contains(lower, "3d controller") ||
			strings.Contains(lower, "display controller") {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines, nil
}

// Probe inspects the host for a graphics adapter. Probe never fails hard: an
// unavailable listing tool reports no adapter rather than an error, so the
// caller can always downgrade gracefully.
func Probe(ctx context.Context) Info {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	adapters, err := listAdapters(ctx)
	if err != nil || len(adapters) == 0 {
		return Info{Description: "no graphics adapter detected"}
	}
	return Classify(adapters)
}

// Classify maps adapter descriptions to an Info. Discrete adapters win over
// integrated ones when both are present.
func Classify(adapters []string) Info {
	info := Info{}
	for _, adapter := range adapters {
		lower := strings.ToLower(adapter)
		switch {
		case matchAny(lower, discreteKeywords):
			return Info{Available: true, Discrete: true, Description: adapter}
		case matchAny(lower, integratedKeywords):
			if !info.Available {
				info = Info{Available: true, Description: adapter + " (integrated, performance may be limited)"}
			}
		default:
			if !info.Available {
				info = Info{Available: true, Description: adapter}
			}
		}
	}
	if !info.Available {
		info.Description = "no graphics adapter detected"
	}
	return info
}

func matchAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
