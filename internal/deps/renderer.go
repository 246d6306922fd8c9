package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"sceneforge/internal/config"
)

// CheckRenderer reports the renderer binary the session will execute.
//
// The lookup mirrors what the interactive shell sees after sourcing the venv
// activation script: a renderer installed under the venv's bin directory wins
// over one resolved from PATH. A configured venv with no activation script is
// reported as a detail so the operator can spot a broken environment before
// dispatching a job.
func CheckRenderer(cfg *config.Config) Status {
	result := Status{
		Name:        "Renderer",
		Description: "Animation renderer driven through the shell session",
	}

	resolved := cfg.RendererBinary()
	if strings.ContainsRune(resolved, os.PathSeparator) {
		if info, err := os.Stat(resolved); err == nil && !info.IsDir() && isExecutable(info) {
			result.Command = resolved
			result.Available = true
			result.Detail = venvDetail(cfg)
			return result
		}
	} else if path, err := exec.LookPath(resolved); err == nil {
		result.Command = path
		result.Available = true
		result.Detail = venvDetail(cfg)
		return result
	}

	result.Command = resolved
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", resolved)
	return result
}

func venvDetail(cfg *config.Config) string {
	script := cfg.VenvActivateScript()
	if script == "" {
		return ""
	}
	if info, err := os.Stat(script); err != nil || info.IsDir() {
		return fmt.Sprintf("venv activation script %q missing", script)
	}
	return ""
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
