package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dalo/internal/media/format"
	"dalo/internal/selection"
	"dalo/internal/services/ytdlp"
	"dalo/internal/textutil"
)

type formatsJSON struct {
	Title         string       `json:"title"`
	HeightMode    string       `json:"height_mode"`
	FPSMode       string       `json:"fps_mode"`
	SplitEligible bool         `json:"split_eligible"`
	Plan          string       `json:"plan"`
	Selectors     []string     `json:"selectors"`
	Formats       []formatJSON `json:"formats"`
}

type formatJSON struct {
	ID         string  `json:"id"`
	Ext        string  `json:"ext"`
	Kind       string  `json:"kind"`
	Height     int     `json:"height,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	VideoCodec string  `json:"vcodec,omitempty"`
	AudioCodec string  `json:"acodec,omitempty"`
	Bitrate    float64 `json:"tbr,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
}

// formatPlan is what a video-mode download would fetch for one probe.
type formatPlan struct {
	decision    selection.Decision
	progressive *format.Descriptor
	videoOnly   *format.Descriptor
	audio       string
}

func (p formatPlan) name() string {
	switch {
	case p.progressive != nil:
		return "single"
	case p.videoOnly != nil:
		return "split"
	default:
		return "best"
	}
}

func (p formatPlan) selectors() []string {
	switch {
	case p.progressive != nil:
		return []string{p.progressive.ID}
	case p.videoOnly != nil:
		return []string{p.videoOnly.ID, p.audio}
	default:
		return []string{selection.BestSelector}
	}
}

func planFormats(c format.Collection, target selection.Target) formatPlan {
	target = target.Normalize()
	plan := formatPlan{decision: selection.Resolve(c, target)}
	if d, ok := selection.Pick(c, format.KindProgressive, target, plan.decision); ok {
		plan.progressive = &d
		return plan
	}
	if !plan.decision.SplitEligible {
		return plan
	}
	if d, ok := selection.Pick(c, format.KindVideoOnly, target, plan.decision); ok {
		plan.videoOnly = &d
		plan.audio = selection.AudioSelector(target.AudioQuality)
	}
	return plan
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "formats <url>",
		Short: "Probe a URL and show what the selection policy would fetch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := buildRequest(cfg, args[0], flags)
			if err != nil {
				return err
			}
			client, err := ctx.ytdlpClient()
			if err != nil {
				return err
			}
			info, err := client.Probe(cmd.Context(), req.URL)
			if err != nil {
				return fmt.Errorf("probe %s: %w", req.URL, err)
			}

			target := selection.Target{Height: req.Height, FPS: req.FPS, AudioQuality: req.AudioQuality}.Normalize()
			plan := planFormats(info.Formats, target)
			if flags.json {
				return writeJSON(cmd, formatsToJSON(info, plan))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderFormatsTable(info.Formats))
			fmt.Fprintf(out, "Title:          %s\n", textutil.SanitizeTitle(info.Title))
			fmt.Fprintf(out, "Target:         %dp @ %d fps\n", target.Height, target.FPS)
			fmt.Fprintf(out, "Height mode:    %s\n", plan.decision.HeightMode)
			fmt.Fprintf(out, "FPS mode:       %s\n", plan.decision.FPSMode)
			fmt.Fprintf(out, "Split eligible: %s\n", yesNo(plan.decision.SplitEligible))
			fmt.Fprintf(out, "Progressive:    %s\n", describeChoice(plan.progressive))
			if plan.progressive == nil && plan.decision.SplitEligible {
				fmt.Fprintf(out, "Video-only:     %s\n", describeChoice(plan.videoOnly))
			}
			fmt.Fprintf(out, "Plan:           %s (%s)\n", plan.name(), strings.Join(plan.selectors(), " + "))
			return nil
		},
	}

	cmd.Flags().IntVar(&flags.height, "height", 0, "Target height in pixels (default from download.video_height)")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "Target frame rate (default from download.video_fps)")
	cmd.Flags().StringVarP(&flags.audioQuality, "audio-quality", "a", "", "low, mid, or high (default from download.audio_quality)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print formats and the plan as JSON")
	return cmd
}

func renderFormatsTable(c format.Collection) string {
	sorted := slices.Clone(c)
	slices.SortStableFunc(sorted, func(a, b format.Descriptor) int {
		if a.Height != b.Height {
			return a.Height - b.Height
		}
		return strings.Compare(a.ID, b.ID)
	})

	columns := []column{
		{Header: "ID"},
		{Header: "Ext"},
		{Header: "Kind"},
		{Header: "Height", Align: alignRight},
		{Header: "FPS", Align: alignRight},
		{Header: "Video", MaxWidth: 14},
		{Header: "Audio", MaxWidth: 12},
		{Header: "Bitrate", Align: alignRight},
		{Header: "Size", Align: alignRight},
	}
	rows := make([][]string, 0, len(sorted))
	for _, d := range sorted {
		rows = append(rows, []string{
			d.ID,
			d.Ext,
			kindLabel(d),
			intOrDash(d.Height),
			fpsLabel(d),
			orDash(d.VideoCodec),
			orDash(d.AudioCodec),
			bitrateLabel(d.Bitrate),
			sizeLabel(d.Filesize),
		})
	}
	return renderTable(columns, rows)
}

func formatsToJSON(info *ytdlp.Info, plan formatPlan) formatsJSON {
	payload := formatsJSON{
		Title:         textutil.SanitizeTitle(info.Title),
		HeightMode:    string(plan.decision.HeightMode),
		FPSMode:       string(plan.decision.FPSMode),
		SplitEligible: plan.decision.SplitEligible,
		Plan:          plan.name(),
		Selectors:     plan.selectors(),
		Formats:       make([]formatJSON, 0, len(info.Formats)),
	}
	for _, d := range info.Formats {
		entry := formatJSON{
			ID:         d.ID,
			Ext:        d.Ext,
			Kind:       kindLabel(d),
			Height:     d.Height,
			VideoCodec: d.VideoCodec,
			AudioCodec: d.AudioCodec,
			Bitrate:    d.Bitrate,
			Filesize:   d.Filesize,
		}
		if d.HasFPS {
			entry.FPS = d.FPS
		}
		payload.Formats = append(payload.Formats, entry)
	}
	return payload
}

func describeChoice(d *format.Descriptor) string {
	if d == nil {
		return "none"
	}
	parts := []string{d.ID}
	if d.HasHeight() {
		parts = append(parts, fmt.Sprintf("%dp", d.Height))
	}
	if d.HasFPS {
		parts = append(parts, fpsLabel(*d)+"fps")
	}
	if d.Ext != "" {
		parts = append(parts, d.Ext)
	}
	return strings.Join(parts, " ")
}

func kindLabel(d format.Descriptor) string {
	if kind := d.Kind(); kind != "" {
		return string(kind)
	}
	if format.IsAudioOnlyCompatible(d) {
		return "audio_only (m4a)"
	}
	if d.HasAudio() {
		return "audio_only"
	}
	return "-"
}

func fpsLabel(d format.Descriptor) string {
	if !d.HasFPS {
		return "-"
	}
	return strconv.FormatFloat(d.FPS, 'f', -1, 64)
}

func intOrDash(v int) string {
	if v <= 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// bitrateLabel renders yt-dlp's tbr, which is reported in kbit/s.
func bitrateLabel(kbps float64) string {
	if kbps <= 0 {
		return "-"
	}
	return humanize.SIWithDigits(kbps*1000, 1, "bps")
}

func sizeLabel(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(n))
}
