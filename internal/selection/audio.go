package selection

import (
	"fmt"
	"strings"
)

// AudioQuality bounds the bitrate of the m4a audio stream.
type AudioQuality string

const (
	AudioLow  AudioQuality = "low"
	AudioMid  AudioQuality = "mid"
	AudioHigh AudioQuality = "high"
)

// BestSelector is the delegate's generic fallback expression.
const BestSelector = "best"

var audioSelectors = map[AudioQuality]string{
	AudioLow:  "bestaudio[ext=m4a][abr<=64]/bestaudio[ext=m4a]",
	AudioMid:  "bestaudio[ext=m4a][abr<=128]/bestaudio[ext=m4a]",
	AudioHigh: "bestaudio[ext=m4a]",
}

// ParseAudioQuality accepts low, mid, or high (case-insensitive). An empty
// value yields the default.
func ParseAudioQuality(value string) (AudioQuality, error) {
	normalized := AudioQuality(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return AudioHigh, nil
	}
	if _, ok := audioSelectors[normalized]; !ok {
		return "", fmt.Errorf("unknown audio quality %q (want low, mid, or high)", value)
	}
	return normalized, nil
}

// Normalize maps unknown values to high.
func (q AudioQuality) Normalize() AudioQuality {
	normalized := AudioQuality(strings.ToLower(strings.TrimSpace(string(q))))
	if _, ok := audioSelectors[normalized]; ok {
		return normalized
	}
	return AudioHigh
}

// AudioSelector returns the selector expression for q.
func AudioSelector(q AudioQuality) string {
	return audioSelectors[q.Normalize()]
}
