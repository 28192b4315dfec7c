package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressBar renders download progress on a terminal. It satisfies
// download.ProgressReceiver.
type progressBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, description string) *progressBar {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &progressBar{bar: bar}
}

// OnProgress moves the bar to percent. Split downloads restart at zero for
// the audio leg.
func (p *progressBar) OnProgress(percent int) {
	_ = p.bar.Set(percent)
}

func (p *progressBar) Finish() {
	_ = p.bar.Finish()
}
