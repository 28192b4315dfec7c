package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpeg reports the ffmpeg binary yt-dlp will use for container
// fixups.
//
// An explicitly configured path wins. Otherwise an ffmpeg that sits next to
// the yt-dlp executable is preferred, as the standalone yt-dlp builds look
// there first, before falling back to "ffmpeg" on PATH. ffmpeg is optional:
// dalo never merges streams itself.
func ResolveFFmpeg(ffmpegCommand, ytdlpCommand string) Status {
	result := Status{
		Name:        NameFFmpeg,
		Description: "Used by yt-dlp for container fixups",
		Optional:    true,
	}

	configured := strings.TrimSpace(ffmpegCommand)
	if configured != "" && configured != "ffmpeg" {
		result.Command = configured
		if resolved, err := exec.LookPath(configured); err == nil {
			result.Command = resolved
			result.Available = true
			return result
		}
		result.Detail = fmt.Sprintf("binary %q not found", configured)
		return result
	}

	if ytdlpBinary := strings.TrimSpace(ytdlpCommand); ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			candidate := sidecarCandidate(resolved)
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				result.Command = candidate
				result.Available = true
				return result
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func sidecarCandidate(ytdlpPath string) string {
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(ytdlpPath), name)
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
