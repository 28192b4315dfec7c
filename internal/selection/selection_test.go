package selection

import (
	"testing"

	"dalo/internal/media/format"
)

func progressive(id string, height int, fps float64, ext string, tbr float64) format.Descriptor {
	d := format.Descriptor{ID: id, Ext: ext, VideoCodec: "avc1.64001F", AudioCodec: "mp4a.40.2", Height: height, Bitrate: tbr}
	if fps > 0 {
		d.FPS = fps
		d.HasFPS = true
	}
	return d
}

func videoOnly(id string, height int, fps float64) format.Descriptor {
	d := format.Descriptor{ID: id, Ext: "mp4", VideoCodec: "avc1.640028", Height: height}
	if fps > 0 {
		d.FPS = fps
		d.HasFPS = true
	}
	return d
}

var m4a = format.Descriptor{ID: "140", Ext: "m4a", AudioCodec: "mp4a.40.2", AudioRate: 129}

func TestResolveProgressiveAtTarget(t *testing.T) {
	c := format.Collection{progressive("22", 1080, 30, "mp4", 0)}
	target := Target{Height: 1080, FPS: 60}

	decision := Resolve(c, target)
	if decision.HeightMode != ModeTarget || decision.FPSMode != ModeTarget {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	chosen, ok := Pick(c, format.KindProgressive, target, decision)
	if !ok || chosen.ID != "22" {
		t.Fatalf("expected descriptor 22, got %+v ok=%v", chosen, ok)
	}
}

func TestResolveSplitRelaxesFPS(t *testing.T) {
	c := format.Collection{videoOnly("299", 1080, 60), m4a}
	target := Target{Height: 1080, FPS: 30}

	decision := Resolve(c, target)
	if !decision.SplitEligible {
		t.Fatal("expected split eligibility with m4a audio present")
	}
	if decision.HeightMode != ModeTarget || decision.FPSMode != ModeBest {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if _, ok := Pick(c, format.KindProgressive, target, decision); ok {
		t.Fatal("expected no progressive candidate")
	}
	chosen, ok := Pick(c, format.KindVideoOnly, target, decision)
	if !ok || chosen.ID != "299" {
		t.Fatalf("expected video-only 299, got %+v ok=%v", chosen, ok)
	}
}

func TestResolveFallsBackToBestHeight(t *testing.T) {
	c := format.Collection{progressive("22", 720, 30, "mp4", 0)}
	target := Target{Height: 1080, FPS: 60}

	decision := Resolve(c, target)
	if decision.HeightMode != ModeBest {
		t.Fatalf("expected BEST height mode, got %s", decision.HeightMode)
	}
	if decision.FPSMode != ModeTarget {
		t.Fatalf("expected TARGET fps mode at best height, got %s", decision.FPSMode)
	}
	chosen, ok := Pick(c, format.KindProgressive, target, decision)
	if !ok || chosen.Height != 720 {
		t.Fatalf("expected 720p pick, got %+v ok=%v", chosen, ok)
	}
}

func TestResolveEmptyCollection(t *testing.T) {
	var c format.Collection
	target := Target{Height: 1080, FPS: 60}
	decision := Resolve(c, target)
	if decision.HeightMode != ModeBest || decision.FPSMode != ModeBest || decision.SplitEligible {
		t.Fatalf("unexpected decision for empty collection: %+v", decision)
	}
	if _, ok := Pick(c, format.KindProgressive, target, decision); ok {
		t.Fatal("expected no progressive pick")
	}
	if _, ok := Pick(c, format.KindVideoOnly, target, decision); ok {
		t.Fatal("expected no video-only pick")
	}
}

func TestResolveIgnoresVideoOnlyWithoutAudio(t *testing.T) {
	c := format.Collection{
		progressive("18", 360, 30, "mp4", 0),
		videoOnly("137", 1080, 30),
	}
	decision := Resolve(c, Target{Height: 1080, FPS: 60})
	if decision.SplitEligible {
		t.Fatal("no audio-only stream should disable split")
	}
	if decision.HeightMode != ModeBest {
		t.Fatalf("video-only height must not count without audio, got %s", decision.HeightMode)
	}
}

func TestPickTargetPrefersSmallestQualifyingHeight(t *testing.T) {
	c := format.Collection{
		progressive("a", 2160, 30, "mp4", 0),
		progressive("b", 1080, 30, "mp4", 0),
		progressive("c", 1440, 30, "mp4", 0),
		progressive("d", 720, 30, "mp4", 0),
	}
	target := Target{Height: 1080, FPS: 60}
	chosen, ok := Pick(c, format.KindProgressive, target, Resolve(c, target))
	if !ok || chosen.ID != "b" {
		t.Fatalf("expected 1080p candidate b, got %+v", chosen)
	}
}

func TestPickBestNeverBelowBestHeight(t *testing.T) {
	c := format.Collection{
		progressive("a", 480, 30, "mp4", 9000),
		progressive("b", 720, 60, "webm", 100),
		progressive("c", 360, 30, "mp4", 0),
	}
	target := Target{Height: 1080, FPS: 30}
	decision := Resolve(c, target)
	if decision.HeightMode != ModeBest || decision.FPSMode != ModeBest {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	chosen, ok := Pick(c, format.KindProgressive, target, decision)
	if !ok || chosen.ID != "b" {
		t.Fatalf("expected best-height candidate b, got %+v", chosen)
	}
}

func TestPickTieBreakOrder(t *testing.T) {
	tests := []struct {
		name string
		c    format.Collection
		want string
	}{
		{
			name: "known fps outranks unknown",
			c: format.Collection{
				progressive("unknown", 1080, 0, "mp4", 5000),
				progressive("known", 1080, 24, "mp4", 100),
			},
			want: "known",
		},
		{
			name: "higher fps wins",
			c: format.Collection{
				progressive("30", 1080, 30, "mp4", 5000),
				progressive("60", 1080, 60, "mp4", 100),
			},
			want: "60",
		},
		{
			name: "mp4 preferred",
			c: format.Collection{
				progressive("webm", 1080, 30, "webm", 5000),
				progressive("mp4", 1080, 30, "MP4", 100),
			},
			want: "mp4",
		},
		{
			name: "higher bitrate wins",
			c: format.Collection{
				progressive("low", 1080, 30, "mp4", 100),
				progressive("none", 1080, 30, "mp4", 0),
				progressive("high", 1080, 30, "mp4", 200),
			},
			want: "high",
		},
		{
			name: "full tie keeps input order",
			c: format.Collection{
				progressive("first", 1080, 30, "mp4", 100),
				progressive("second", 1080, 30, "mp4", 100),
			},
			want: "first",
		},
	}
	target := Target{Height: 1080, FPS: 60}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Resolve(tt.c, target)
			chosen, ok := Pick(tt.c, format.KindProgressive, target, decision)
			if !ok || chosen.ID != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, chosen)
			}
			again, _ := Pick(tt.c, format.KindProgressive, target, decision)
			if again != chosen {
				t.Fatalf("pick not idempotent: %+v vs %+v", chosen, again)
			}
		})
	}
}

func TestPickDoesNotReorderCollection(t *testing.T) {
	c := format.Collection{
		progressive("a", 360, 30, "mp4", 0),
		progressive("b", 1080, 30, "mp4", 0),
	}
	target := Target{Height: 1080, FPS: 60}
	Pick(c, format.KindProgressive, target, Decision{HeightMode: ModeBest, FPSMode: ModeBest})
	if c[0].ID != "a" || c[1].ID != "b" {
		t.Fatalf("collection was reordered: %+v", c)
	}
}

func TestTargetNormalize(t *testing.T) {
	got := Target{AudioQuality: "LOUD"}.Normalize()
	if got.Height != DefaultHeight || got.FPS != DefaultFPS || got.AudioQuality != AudioHigh {
		t.Fatalf("unexpected normalized target: %+v", got)
	}
}

func TestAudioSelector(t *testing.T) {
	tests := []struct {
		quality AudioQuality
		want    string
	}{
		{AudioLow, "bestaudio[ext=m4a][abr<=64]/bestaudio[ext=m4a]"},
		{AudioMid, "bestaudio[ext=m4a][abr<=128]/bestaudio[ext=m4a]"},
		{AudioHigh, "bestaudio[ext=m4a]"},
		{"ultra", "bestaudio[ext=m4a]"},
		{"", "bestaudio[ext=m4a]"},
	}
	for _, tt := range tests {
		if got := AudioSelector(tt.quality); got != tt.want {
			t.Fatalf("AudioSelector(%q) = %q, want %q", tt.quality, got, tt.want)
		}
	}
}

func TestParseAudioQuality(t *testing.T) {
	if q, err := ParseAudioQuality(" Mid "); err != nil || q != AudioMid {
		t.Fatalf("expected mid, got %q err=%v", q, err)
	}
	if q, err := ParseAudioQuality(""); err != nil || q != AudioHigh {
		t.Fatalf("expected default high, got %q err=%v", q, err)
	}
	if _, err := ParseAudioQuality("ultra"); err == nil {
		t.Fatal("expected error for unknown quality")
	}
}
