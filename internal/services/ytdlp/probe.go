package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dalo/internal/media/format"
)

// Info is the read-only metadata returned by a probe.
type Info struct {
	ID       string
	Title    string
	Uploader string
	Duration float64
	Formats  format.Collection
}

type rawInfo struct {
	ID       format.Text        `json:"id"`
	Title    format.Text        `json:"title"`
	Uploader format.Text        `json:"uploader"`
	Duration format.Number      `json:"duration"`
	Formats  []format.RawFormat `json:"formats"`
}

// Probe fetches metadata for url without downloading anything.
func (c *Client) Probe(ctx context.Context, url string) (*Info, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, &ToolError{Op: OpProbe, Message: "empty url"}
	}
	args := append([]string{"-J", "--skip-download"}, c.commonArgs()...)
	args = append(args, "--", url)

	out, err := c.exec.Output(ctx, c.binary, args)
	if err != nil {
		return nil, toolError(ctx, OpProbe, err)
	}
	info, err := DecodeInfo(out)
	if err != nil {
		return nil, &ToolError{Op: OpDecode, Message: err.Error(), Err: err}
	}
	return info, nil
}

// DecodeInfo parses a -J payload. Playlist payloads resolve to their first
// entry.
func DecodeInfo(payload []byte) (*Info, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, errors.New("yt-dlp returned no metadata")
	}
	var envelope struct {
		rawInfo
		Entries []rawInfo `json:"entries"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	raw := envelope.rawInfo
	if len(raw.Formats) == 0 && len(envelope.Entries) > 0 {
		raw = envelope.Entries[0]
	}
	info := &Info{
		ID:       strings.TrimSpace(raw.ID.String()),
		Title:    raw.Title.String(),
		Uploader: strings.TrimSpace(raw.Uploader.String()),
		Formats:  format.Parse(raw.Formats),
	}
	if d, ok := raw.Duration.Value(); ok && d > 0 {
		info.Duration = d
	}
	return info, nil
}

func toolError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ToolError{Op: op, Message: ctxErr.Error(), Err: fmt.Errorf("%w: %w", ctxErr, err)}
	}
	var message string
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		message = lastErrorLine(cmdErr.Stderr)
	}
	return &ToolError{Op: op, Message: message, Err: err}
}
