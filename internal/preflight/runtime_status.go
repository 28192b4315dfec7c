package preflight

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// ToolVersion reports the version string an executable prints.
type ToolVersion struct {
	Command string
	Version string
	Detail  string
}

// ProbeYTDLPVersion runs "<binary> --version" with a short timeout.
func ProbeYTDLPVersion(ctx context.Context, binary string) ToolVersion {
	binary = strings.TrimSpace(binary)
	result := ToolVersion{Command: binary}
	if binary == "" {
		result.Detail = "command not configured"
		return result
	}
	if _, err := exec.LookPath(binary); err != nil {
		result.Detail = "not installed"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "--version").Output() //nolint:gosec
	if err != nil {
		result.Detail = "version check failed: " + err.Error()
		return result
	}
	text := strings.TrimSpace(string(output))
	if line, _, ok := strings.Cut(text, "\n"); ok {
		text = line
	}
	if text == "" {
		result.Detail = "no version reported"
		return result
	}
	result.Version = text
	return result
}

// Display renders the version or the reason it is missing.
func (v ToolVersion) Display() string {
	if v.Version != "" {
		return v.Version
	}
	if v.Detail != "" {
		return v.Detail
	}
	return "unknown"
}
