package main

import (
	"encoding/json"
	"os"
	"testing"

	"dalo/internal/media/format"
	"dalo/internal/selection"
	"dalo/internal/testsupport"
)

func TestFormatsCommandShowsPlanWithoutDownloading(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeYTDLP(sampleProbe))

	out, _, err := runCLI(t, []string{"formats", "https://example.com/v"}, env.configPath)
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	requireContains(t, out, "video_only")
	requireContains(t, out, "audio_only (m4a)")
	requireContains(t, out, "2.5 MB")
	requireContains(t, out, "Height mode:    TARGET")
	requireContains(t, out, "Progressive:    none")
	requireContains(t, out, "Video-only:     137 1080p 30fps mp4")
	requireContains(t, out, "Plan:           split (137 + bestaudio[ext=m4a])")

	entries, err := os.ReadDir(env.cfg.Paths.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("formats must not write files, found %d", len(entries))
	}
}

func TestFormatsCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeYTDLP(sampleProbe))

	out, _, err := runCLI(t, []string{"formats", "--json", "--height", "720", "--fps", "30", "https://example.com/v"}, env.configPath)
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	var payload formatsJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Plan != "single" || len(payload.Selectors) != 1 || payload.Selectors[0] != "22" {
		t.Fatalf("unexpected plan %+v", payload)
	}
	if len(payload.Formats) != 4 {
		t.Fatalf("formats = %d, want 4", len(payload.Formats))
	}
}

func TestPlanFormatsFallsBackToBest(t *testing.T) {
	c := format.Collection{
		{ID: "w1", Ext: "webm", VideoCodec: "vp9", Height: 1080},
		{ID: "a1", Ext: "webm", AudioCodec: "opus"},
	}
	plan := planFormats(c, selection.Target{})
	if plan.name() != "best" {
		t.Fatalf("plan = %s, want best", plan.name())
	}
	if got := plan.selectors(); len(got) != 1 || got[0] != selection.BestSelector {
		t.Fatalf("selectors = %v", got)
	}
}

func TestBitrateAndSizeLabels(t *testing.T) {
	if got := bitrateLabel(0); got != "-" {
		t.Fatalf("bitrateLabel(0) = %q", got)
	}
	if got := bitrateLabel(1500); got != "1.5 Mbps" {
		t.Fatalf("bitrateLabel(1500) = %q", got)
	}
	if got := sizeLabel(-1); got != "-" {
		t.Fatalf("sizeLabel(-1) = %q", got)
	}
	if got := sizeLabel(2500000); got != "2.5 MB" {
		t.Fatalf("sizeLabel = %q", got)
	}
}
