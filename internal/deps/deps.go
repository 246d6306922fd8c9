package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"sceneforge/internal/config"
)

// Requirement defines an external dependency the daemon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check evaluates every external tool the daemon shells out to.
func Check(cfg *config.Config) []Status {
	results := CheckBinaries([]Requirement{
		{Name: "Shell", Command: cfg.Renderer.Shell, Description: "Interactive shell hosting the render session"},
		{Name: "FFmpeg", Command: cfg.Renderer.FFmpegBinary, Description: "Used for streaming-friendly remuxing", Optional: true},
	})
	results = append(results, CheckRenderer(cfg))
	return results
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
