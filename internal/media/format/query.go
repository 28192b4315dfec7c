package format

// ExistsAtOrAboveHeight reports whether any eligible descriptor of kind has a
// height of at least target.
func (c Collection) ExistsAtOrAboveHeight(kind Kind, target int) bool {
	for _, d := range c {
		if Eligible(d, kind) && d.HasHeight() && d.Height >= target {
			return true
		}
	}
	return false
}

// BestHeight returns the maximum height among eligible descriptors of kind.
func (c Collection) BestHeight(kind Kind) (int, bool) {
	best := 0
	found := false
	for _, d := range c {
		if !Eligible(d, kind) || !d.HasHeight() {
			continue
		}
		if !found || d.Height > best {
			best = d.Height
			found = true
		}
	}
	return best, found
}

// ExistsFPSOkAtOrAboveHeight reports whether an eligible descriptor of kind
// reaches target height while staying within the fps target.
func (c Collection) ExistsFPSOkAtOrAboveHeight(kind Kind, targetHeight, targetFPS int) bool {
	for _, d := range c {
		if !Eligible(d, kind) || !d.HasHeight() {
			continue
		}
		if d.Height >= targetHeight && FPSWithinTarget(d, targetFPS) {
			return true
		}
	}
	return false
}

// ExistsFPSOkAtBestHeight reports whether an eligible descriptor of kind at
// the kind's best height stays within the fps target.
func (c Collection) ExistsFPSOkAtBestHeight(kind Kind, targetFPS int) bool {
	best, ok := c.BestHeight(kind)
	if !ok {
		return false
	}
	for _, d := range c {
		if Eligible(d, kind) && d.Height == best && FPSWithinTarget(d, targetFPS) {
			return true
		}
	}
	return false
}

// HasAudioOnlyCompatible reports whether any descriptor can be merged as the
// audio half of a split download.
func (c Collection) HasAudioOnlyCompatible() bool {
	for _, d := range c {
		if IsAudioOnlyCompatible(d) {
			return true
		}
	}
	return false
}
