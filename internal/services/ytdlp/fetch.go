package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	progressMarker = "dalo:progress"
	fileMarker     = "dalo:file"
	titleMarker    = "dalo:title"
	idMarker       = "dalo:id"
)

// Progress is one download progress event.
type Progress struct {
	Status          string
	DownloadedBytes int64
	TotalBytes      int64
	EstimatedBytes  int64
}

// FetchRequest names one stream to download.
type FetchRequest struct {
	URL string
	// Selector is a format id or a selector expression such as "best".
	Selector       string
	OutputTemplate string
}

// FetchResult reports where the stream landed.
type FetchResult struct {
	Path  string
	Title string
	ID    string
}

// Fetch downloads exactly the requested stream. Overwrites are forced and
// partial files are neither resumed nor kept.
func (c *Client) Fetch(ctx context.Context, req FetchRequest, progress func(Progress)) (FetchResult, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Selector = strings.TrimSpace(req.Selector)
	if req.URL == "" || req.Selector == "" || req.OutputTemplate == "" {
		return FetchResult{}, &ToolError{Op: OpFetch, Message: "url, selector, and output template required"}
	}

	args := []string{
		"-f", req.Selector,
		"-o", req.OutputTemplate,
		"--force-overwrites",
		"--no-continue",
		"--no-part",
		"--newline",
		"--progress",
		"--no-simulate",
		"--progress-template", "download:" + progressMarker + " %(progress.status)s %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s",
		"--print", "after_move:" + fileMarker + " %(filepath)s",
		"--print", "after_move:" + titleMarker + " %(title)s",
		"--print", "after_move:" + idMarker + " %(id)s",
	}
	args = append(args, c.commonArgs()...)
	args = append(args, "--", req.URL)

	var result FetchResult
	var lastError string
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		switch {
		case strings.HasPrefix(line, progressMarker+" "):
			if progress == nil {
				return
			}
			if update, ok := parseProgress(line); ok {
				progress(update)
			}
		case strings.HasPrefix(line, fileMarker+" "):
			result.Path = strings.TrimSpace(strings.TrimPrefix(line, fileMarker+" "))
		case strings.HasPrefix(line, titleMarker+" "):
			result.Title = strings.TrimPrefix(line, titleMarker+" ")
		case strings.HasPrefix(line, idMarker+" "):
			result.ID = strings.TrimSpace(strings.TrimPrefix(line, idMarker+" "))
		default:
			if msg, ok := errorMessage(line); ok {
				lastError = msg
			}
		}
	})
	if err != nil {
		toolErr := toolError(ctx, OpFetch, err)
		var te *ToolError
		if errors.As(toolErr, &te) && te.Message == "" {
			te.Message = lastError
		}
		return FetchResult{}, toolErr
	}

	if result.Path == "" || !fileExists(result.Path) {
		path, err := resolveOutput(req.OutputTemplate)
		if err != nil {
			return FetchResult{}, &ToolError{Op: OpFetch, Message: err.Error(), Err: err}
		}
		result.Path = path
	}
	return result, nil
}

func parseProgress(line string) (Progress, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, progressMarker))
	if len(fields) < 4 {
		return Progress{}, false
	}
	return Progress{
		Status:          fields[0],
		DownloadedBytes: parseBytes(fields[1]),
		TotalBytes:      parseBytes(fields[2]),
		EstimatedBytes:  parseBytes(fields[3]),
	}, true
}

// parseBytes treats "NA" and other non-numeric values as zero.
func parseBytes(value string) int64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var templateField = regexp.MustCompile(`%\([^)]*\)[-#0+ ]*[0-9]*(?:\.[0-9]+)?[a-zA-Z]`)

type outputEntry struct {
	path    string
	modTime time.Time
}

// resolveOutput finds the file written for template when yt-dlp did not
// print it, preferring common playable containers and then the newest file.
func resolveOutput(template string) (string, error) {
	dir := filepath.Dir(template)
	pattern := templateField.ReplaceAllString(filepath.Base(template), "*")

	items, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("inspect output directory: %w", err)
	}
	entries := make([]outputEntry, 0, len(items))
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, item.Name()); !ok {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, outputEntry{path: filepath.Join(dir, item.Name()), modTime: info.ModTime()})
	}
	if len(entries) == 0 {
		return "", errors.New("yt-dlp produced no output file")
	}
	slices.SortStableFunc(entries, func(a, b outputEntry) int {
		pa, pb := extPriority(filepath.Ext(a.path)), extPriority(filepath.Ext(b.path))
		if pa != pb {
			return pa - pb
		}
		return b.modTime.Compare(a.modTime)
	})
	return entries[0].path, nil
}

// extPriority returns a priority score for file extensions (lower = better).
func extPriority(ext string) int {
	switch strings.ToLower(ext) {
	case ".mp4":
		return 0
	case ".m4a":
		return 1
	case ".mkv":
		return 2
	case ".webm":
		return 3
	case ".mov":
		return 4
	default:
		return 100
	}
}
