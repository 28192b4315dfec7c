package download

// progressTracker turns byte counts into whole-percent updates, forwarding
// each distinct percent to the receiver once.
type progressTracker struct {
	receiver ProgressReceiver
	last     int
}

func newProgressTracker(receiver ProgressReceiver) *progressTracker {
	return &progressTracker{receiver: receiver, last: -1}
}

// update records downloaded/total and reports the new percent when it
// changed. The estimate stands in when the exact total is missing; with
// neither, the event is dropped.
func (t *progressTracker) update(status string, downloaded, total, estimate int64) (int, bool) {
	if t == nil || status != "downloading" {
		return 0, false
	}
	if total <= 0 {
		total = estimate
	}
	if total <= 0 {
		return 0, false
	}
	if downloaded < 0 {
		downloaded = 0
	}
	percent := int(downloaded * 100 / total)
	if percent == t.last {
		return 0, false
	}
	t.last = percent
	if t.receiver != nil {
		t.deliver(percent)
	}
	return percent, true
}

// deliver shields the run from a panicking receiver.
func (t *progressTracker) deliver(percent int) {
	defer func() { _ = recover() }()
	t.receiver.OnProgress(percent)
}
