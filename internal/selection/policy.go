package selection

import "dalo/internal/media/format"

// Mode selects between meeting the caller's target and settling for the best
// value available.
type Mode string

const (
	ModeTarget Mode = "TARGET"
	ModeBest   Mode = "BEST"
)

// Default targets applied when the caller leaves a field unset.
const (
	DefaultHeight = 1080
	DefaultFPS    = 60
)

// Target is the caller's requested quality.
type Target struct {
	Height       int
	FPS          int
	AudioQuality AudioQuality
}

// Normalize fills unset or non-positive fields with defaults.
func (t Target) Normalize() Target {
	if t.Height <= 0 {
		t.Height = DefaultHeight
	}
	if t.FPS <= 0 {
		t.FPS = DefaultFPS
	}
	t.AudioQuality = t.AudioQuality.Normalize()
	return t
}

// Decision holds the mode flags derived once per run.
type Decision struct {
	HeightMode Mode
	FPSMode    Mode
	// SplitEligible is set when the collection holds an audio stream that can
	// be paired with a video-only candidate.
	SplitEligible bool
}

// Resolve derives the height and fps modes for the whole collection. Video-only
// streams only count when the collection also offers a compatible audio stream.
func Resolve(c format.Collection, target Target) Decision {
	target = target.Normalize()
	decision := Decision{SplitEligible: c.HasAudioOnlyCompatible()}

	kinds := []format.Kind{format.KindProgressive}
	if decision.SplitEligible {
		kinds = append(kinds, format.KindVideoOnly)
	}

	decision.HeightMode = ModeBest
	for _, kind := range kinds {
		if c.ExistsAtOrAboveHeight(kind, target.Height) {
			decision.HeightMode = ModeTarget
			break
		}
	}

	decision.FPSMode = ModeBest
	for _, kind := range kinds {
		var ok bool
		if decision.HeightMode == ModeTarget {
			ok = c.ExistsFPSOkAtOrAboveHeight(kind, target.Height, target.FPS)
		} else {
			ok = c.ExistsFPSOkAtBestHeight(kind, target.FPS)
		}
		if ok {
			decision.FPSMode = ModeTarget
			break
		}
	}
	return decision
}
