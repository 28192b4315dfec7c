package format

import "strings"

// IsProgressive reports whether d carries both audio and video.
func IsProgressive(d Descriptor) bool {
	return d.HasVideo() && d.HasAudio()
}

// IsVideoOnlyMuxable reports whether d is a video-only MP4 stream with an
// AVC or HEVC codec and a known height.
func IsVideoOnlyMuxable(d Descriptor) bool {
	if d.HasAudio() || !d.HasVideo() || !d.HasHeight() {
		return false
	}
	if !strings.EqualFold(d.Ext, "mp4") {
		return false
	}
	return isMuxableVideoCodec(d.VideoCodec)
}

func isMuxableVideoCodec(codec string) bool {
	codec = strings.ToLower(codec)
	switch {
	case strings.HasPrefix(codec, "avc"), strings.Contains(codec, "h264"):
		return true
	case strings.HasPrefix(codec, "hvc"), strings.HasPrefix(codec, "hev"), strings.Contains(codec, "hevc"):
		return true
	default:
		return false
	}
}

// IsAudioOnlyCompatible reports whether d can serve as the audio half of a
// split download.
func IsAudioOnlyCompatible(d Descriptor) bool {
	if d.HasVideo() {
		return false
	}
	if strings.EqualFold(d.Ext, "m4a") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(d.AudioCodec), "mp4a")
}

// FPSWithinTarget treats an unknown frame rate as acceptable.
func FPSWithinTarget(d Descriptor, target int) bool {
	if !d.HasFPS {
		return true
	}
	return d.FPS <= float64(target)
}

// Eligible applies the kind filter used by every selection query.
func Eligible(d Descriptor, kind Kind) bool {
	switch kind {
	case KindProgressive:
		return IsProgressive(d)
	case KindVideoOnly:
		return IsVideoOnlyMuxable(d)
	default:
		return false
	}
}
