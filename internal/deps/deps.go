package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Names reported in Status.Name.
const (
	NameYTDLP  = "yt-dlp"
	NameFFmpeg = "FFmpeg"
)

// Status reports whether one executable is usable.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Toolchain holds the configured yt-dlp and ffmpeg commands.
type Toolchain struct {
	YTDLP  string
	FFmpeg string
}

// Check reports yt-dlp followed by ffmpeg.
func Check(tc Toolchain) []Status {
	return []Status{ResolveYTDLP(tc.YTDLP), ResolveFFmpeg(tc.FFmpeg, tc.YTDLP)}
}

// ResolveYTDLP locates the yt-dlp executable. Command is the resolved path
// when it is found.
func ResolveYTDLP(command string) Status {
	status := Status{
		Name:        NameYTDLP,
		Command:     strings.TrimSpace(command),
		Description: "Required for probing and downloading media",
	}
	if status.Command == "" {
		status.Detail = "ytdlp.binary not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// MissingRequired returns the required executables that are not installed.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
