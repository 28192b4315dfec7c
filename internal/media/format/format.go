package format

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind classifies a descriptor's stream shape.
type Kind string

const (
	KindProgressive Kind = "progressive"
	KindVideoOnly   Kind = "video_only"
)

// Descriptor is an immutable snapshot of one retrievable stream variant.
// Codec fields are empty when the probe reported them absent or "none".
// Height and Bitrate are zero when unknown; FPS is only meaningful when HasFPS
// is set.
type Descriptor struct {
	ID         string
	Ext        string
	VideoCodec string
	AudioCodec string
	Height     int
	FPS        float64
	HasFPS     bool
	Bitrate    float64
	AudioRate  float64
	Filesize   int64
	Note       string
}

// HasVideo reports whether the descriptor carries a video codec.
func (d Descriptor) HasVideo() bool { return d.VideoCodec != "" }

// HasAudio reports whether the descriptor carries an audio codec.
func (d Descriptor) HasAudio() bool { return d.AudioCodec != "" }

// HasHeight reports whether the probe reported a usable height.
func (d Descriptor) HasHeight() bool { return d.Height > 0 }

// Kind returns the stream shape, or "" for audio-only or empty descriptors.
func (d Descriptor) Kind() Kind {
	switch {
	case IsProgressive(d):
		return KindProgressive
	case d.HasVideo():
		return KindVideoOnly
	default:
		return ""
	}
}

// Collection is the unordered set of descriptors produced by one probe.
type Collection []Descriptor

// RawFormat mirrors one entry of yt-dlp's "formats" array. Numeric fields
// accept numbers, numeric strings, or null; anything else decodes as absent.
type RawFormat struct {
	FormatID       Text   `json:"format_id"`
	Ext            Text   `json:"ext"`
	VCodec         Text   `json:"vcodec"`
	ACodec         Text   `json:"acodec"`
	Height         Number `json:"height"`
	FPS            Number `json:"fps"`
	TBR            Number `json:"tbr"`
	ABR            Number `json:"abr"`
	Filesize       Number `json:"filesize"`
	FilesizeApprox Number `json:"filesize_approx"`
	FormatNote     Text   `json:"format_note"`
}

// Parse converts raw probe entries into descriptors. Entries are never
// dropped; malformed fields simply become absent.
func Parse(raw []RawFormat) Collection {
	out := make(Collection, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Descriptor())
	}
	return out
}

// Descriptor normalizes a raw entry.
func (r RawFormat) Descriptor() Descriptor {
	d := Descriptor{
		ID:         strings.TrimSpace(r.FormatID.String()),
		Ext:        strings.TrimSpace(r.Ext.String()),
		VideoCodec: normalizeCodec(r.VCodec.String()),
		AudioCodec: normalizeCodec(r.ACodec.String()),
		Note:       strings.TrimSpace(r.FormatNote.String()),
	}
	if h, ok := r.Height.Value(); ok && h >= 1 {
		d.Height = int(h)
	}
	if fps, ok := r.FPS.Value(); ok {
		d.FPS = fps
		d.HasFPS = true
	}
	if tbr, ok := r.TBR.Value(); ok {
		d.Bitrate = tbr
	}
	if abr, ok := r.ABR.Value(); ok {
		d.AudioRate = abr
	}
	if size, ok := r.Filesize.Value(); ok && size > 0 {
		d.Filesize = int64(size)
	} else if size, ok := r.FilesizeApprox.Value(); ok && size > 0 {
		d.Filesize = int64(size)
	}
	return d
}

func normalizeCodec(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "none") {
		return ""
	}
	return value
}

// Number is a leniently decoded JSON number.
type Number struct {
	value float64
	ok    bool
}

// NewNumber returns a present Number.
func NewNumber(v float64) Number { return Number{value: v, ok: true} }

// Value returns the number and whether it was present and finite.
func (n Number) Value() (float64, bool) { return n.value, n.ok }

// UnmarshalJSON never fails; unparseable input leaves the number absent.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{value: v, ok: true}
	return nil
}

// MarshalJSON writes null for absent numbers.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.value, 'f', -1, 64), nil
}

// Text is a leniently decoded JSON string. Non-string scalars keep their
// literal form; null and structured values decode as empty.
type Text string

func (t Text) String() string { return string(t) }

// UnmarshalJSON never fails.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			*t = Text(s)
		}
	case '{', '[':
	default:
		*t = Text(trimmed)
	}
	return nil
}
