package selection

import (
	"cmp"
	"slices"
	"strings"

	"dalo/internal/media/format"
)

// Pick returns the preferred descriptor of kind under the run's decision, or
// false when nothing survives the filters. The collection is not modified.
func Pick(c format.Collection, kind format.Kind, target Target, decision Decision) (format.Descriptor, bool) {
	target = target.Normalize()
	candidates := make([]format.Descriptor, 0, len(c))
	for _, d := range c {
		if !d.HasHeight() || !format.Eligible(d, kind) {
			continue
		}
		if decision.HeightMode == ModeTarget && d.Height < target.Height {
			continue
		}
		if decision.FPSMode == ModeTarget && !format.FPSWithinTarget(d, target.FPS) {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return format.Descriptor{}, false
	}

	ascending := decision.HeightMode == ModeTarget
	slices.SortStableFunc(candidates, func(a, b format.Descriptor) int {
		return compareCandidates(a, b, ascending)
	})
	return candidates[0], true
}

// compareCandidates orders by height (direction depends on mode), then fps,
// container preference, and bitrate, all descending.
func compareCandidates(a, b format.Descriptor, heightAscending bool) int {
	if c := cmp.Compare(a.Height, b.Height); c != 0 {
		if heightAscending {
			return c
		}
		return -c
	}
	if c := cmp.Compare(fpsKey(b), fpsKey(a)); c != 0 {
		return c
	}
	if c := cmp.Compare(extPreference(b), extPreference(a)); c != 0 {
		return c
	}
	return cmp.Compare(b.Bitrate, a.Bitrate)
}

func fpsKey(d format.Descriptor) float64 {
	if !d.HasFPS {
		return -1
	}
	return d.FPS
}

func extPreference(d format.Descriptor) int {
	if strings.EqualFold(d.Ext, "mp4") {
		return 1
	}
	return 0
}
