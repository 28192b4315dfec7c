package ytdlp

import (
	"strings"

	"dalo/internal/services"
)

// Operations reported by ToolError.
const (
	OpProbe = "probe"
	OpFetch = "fetch"
	// OpDecode marks probe output that could not be understood.
	OpDecode = "decode"
)

// ToolError describes a failed yt-dlp invocation. Message holds the last
// "ERROR:" line yt-dlp printed, when there was one.
type ToolError struct {
	Op      string
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "yt-dlp failed"
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure for run results.
func (e *ToolError) ErrorKind() string {
	switch e.Op {
	case OpProbe:
		return services.KindProbe
	case OpDecode:
		return services.KindExtractor
	default:
		return services.KindDownload
	}
}

// lastErrorLine returns the final "ERROR:" message in text, without prefix.
func lastErrorLine(text string) string {
	var last string
	for _, line := range strings.Split(text, "\n") {
		if msg, ok := errorMessage(line); ok {
			last = msg
		}
	}
	return last
}

func errorMessage(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "ERROR:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")), true
}
