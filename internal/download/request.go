package download

import (
	"strconv"
	"strings"

	"dalo/internal/selection"
)

// Mode chooses between an audio-only download and the video policy.
type Mode int

// ModeAudio requests an m4a audio stream. Any other value selects video.
const ModeAudio Mode = 0

// ModeVideo is the conventional non-zero video mode.
const ModeVideo Mode = 1

// IsAudio reports whether m requests audio only.
func (m Mode) IsAudio() bool { return m == ModeAudio }

func (m Mode) String() string {
	if m.IsAudio() {
		return "audio"
	}
	return "video"
}

// ParseMode maps "audio", "music" and the integer 0 to ModeAudio and
// anything else, including any non-zero integer, to ModeVideo.
func ParseMode(value string) Mode {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		if n == 0 {
			return ModeAudio
		}
		return ModeVideo
	}
	switch value {
	case "audio", "music":
		return ModeAudio
	default:
		return ModeVideo
	}
}

// ProgressReceiver accepts whole-percent download progress. Implementations
// must return quickly.
type ProgressReceiver interface {
	OnProgress(percent int)
}

// ProgressFunc adapts a function to ProgressReceiver.
type ProgressFunc func(percent int)

// OnProgress calls f.
func (f ProgressFunc) OnProgress(percent int) { f(percent) }

// Request is the inbound call contract for one run.
type Request struct {
	URL     string
	Mode    Mode
	WorkDir string
	// Progress is optional.
	Progress     ProgressReceiver
	AudioQuality selection.AudioQuality
	Height       int
	FPS          int
}

func (r Request) target() selection.Target {
	return selection.Target{Height: r.Height, FPS: r.FPS, AudioQuality: r.AudioQuality}.Normalize()
}
