package history

import (
	"strings"
	"time"
)

// Run is one recorded download invocation.
type Run struct {
	ID           string
	URL          string
	Mode         string
	TargetHeight int
	TargetFPS    int
	AudioQuality string
	HeightMode   string
	FPSMode      string
	// FormatIDs lists the selectors handed to the delegate, in fetch order.
	FormatIDs    []string
	Status       string
	File         string
	VideoPath    string
	AudioPath    string
	Title        string
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Succeeded reports whether the run produced files.
func (r Run) Succeeded() bool {
	return strings.HasPrefix(r.Status, "OK_")
}

// Elapsed is the wall time the run took.
func (r Run) Elapsed() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outputs returns the non-empty file paths the run reported.
func (r Run) Outputs() []string {
	var out []string
	for _, p := range []string{r.File, r.VideoPath, r.AudioPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
