package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dalo/internal/config"
	"dalo/internal/deps"
	"dalo/internal/download"
	"dalo/internal/history"
	"dalo/internal/preflight"
	"dalo/internal/selection"
)

// errRunFailed signals a run that ended in an ERR status block. The block has
// already been printed, so main only sets the exit code.
var errRunFailed = errors.New("download failed")

type downloadFlags struct {
	mode         string
	audioQuality string
	height       int
	fps          int
	workDir      string
	json         bool
	noProgress   bool
}

type downloadJSON struct {
	Status       string `json:"status"`
	File         string `json:"file,omitempty"`
	Video        string `json:"video,omitempty"`
	Audio        string `json:"audio,omitempty"`
	Title        string `json:"title,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a URL and print its status block",
		Long: `Download a URL and print its status block.

Video mode probes the formats first and tries a single progressive stream,
then a video-only plus m4a audio pair, then yt-dlp's "best". Audio mode
fetches one m4a stream directly.

The status block on stdout is one of OK_SINGLE, OK_SPLIT, OK_AUDIO, or
"ERR: <kind>". Split results are not merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := buildRequest(cfg, args[0], flags)
			if err != nil {
				return err
			}
			if err := requireDeps(preflight.CheckSystemDeps(cfg)); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			client, err := ctx.ytdlpClient()
			if err != nil {
				return err
			}

			var bar *progressBar
			if !flags.noProgress && !flags.json && shouldColorize(cmd.ErrOrStderr()) {
				bar = newProgressBar(cmd.ErrOrStderr(), req.Mode.String())
				req.Progress = bar
			}

			var result download.Result
			err = ctx.withHistory(func(store *history.Store) error {
				opts := []download.Option{download.WithLogger(logger)}
				if store != nil {
					opts = append(opts, download.WithRecorder(store))
				}
				runner, err := download.New(client, opts...)
				if err != nil {
					return err
				}
				result = runner.Run(cmd.Context(), req)
				return nil
			})
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				return err
			}

			if flags.json {
				if err := writeJSON(cmd, resultJSON(result)); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), result.String())
			}
			if !result.OK() {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "video, audio, or an integer where 0 is audio (default from download.mode)")
	cmd.Flags().StringVarP(&flags.audioQuality, "audio-quality", "a", "", "low, mid, or high (default from download.audio_quality)")
	cmd.Flags().IntVar(&flags.height, "height", 0, "Target height in pixels (default from download.video_height)")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "Target frame rate (default from download.video_fps)")
	cmd.Flags().StringVarP(&flags.workDir, "work-dir", "w", "", "Directory downloads are written to (default from paths.work_dir)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the result as JSON instead of a status block")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

// buildRequest layers command flags over the [download] defaults.
func buildRequest(cfg *config.Config, url string, flags downloadFlags) (download.Request, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return download.Request{}, errors.New("url is required")
	}

	modeValue := cfg.Download.Mode
	if m := strings.ToLower(strings.TrimSpace(flags.mode)); m != "" {
		if _, err := strconv.Atoi(m); err == nil {
			modeValue = m
		} else {
			switch m {
			case "video", "audio", "music":
				modeValue = m
			default:
				return download.Request{}, fmt.Errorf("--mode must be video, audio, or an integer (0 = audio), got %q", flags.mode)
			}
		}
	}

	qualityValue := cfg.Download.AudioQuality
	if strings.TrimSpace(flags.audioQuality) != "" {
		qualityValue = flags.audioQuality
	}
	quality, err := selection.ParseAudioQuality(qualityValue)
	if err != nil {
		return download.Request{}, fmt.Errorf("--audio-quality: %w", err)
	}

	height := cfg.Download.VideoHeight
	if flags.height != 0 {
		if flags.height < 0 {
			return download.Request{}, fmt.Errorf("--height must be positive, got %d", flags.height)
		}
		height = flags.height
	}
	fps := cfg.Download.VideoFPS
	if flags.fps != 0 {
		if flags.fps < 0 {
			return download.Request{}, fmt.Errorf("--fps must be positive, got %d", flags.fps)
		}
		fps = flags.fps
	}

	workDir := cfg.Paths.WorkDir
	if strings.TrimSpace(flags.workDir) != "" {
		expanded, err := config.ExpandPath(strings.TrimSpace(flags.workDir))
		if err != nil {
			return download.Request{}, fmt.Errorf("--work-dir: %w", err)
		}
		workDir = expanded
	}

	return download.Request{
		URL:          url,
		Mode:         download.ParseMode(modeValue),
		WorkDir:      workDir,
		AudioQuality: quality,
		Height:       height,
		FPS:          fps,
	}, nil
}

// requireDeps fails when a non-optional dependency is missing.
func requireDeps(statuses []deps.Status) error {
	var missing []string
	for _, status := range deps.MissingRequired(statuses) {
		missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required dependencies: %s; run `dalo status` for details", strings.Join(missing, ", "))
}

func resultJSON(result download.Result) downloadJSON {
	return downloadJSON{
		Status:       string(result.Status),
		File:         result.File,
		Video:        result.Video,
		Audio:        result.Audio,
		Title:        result.Title,
		ErrorKind:    result.ErrKind,
		ErrorMessage: result.ErrMessage,
	}
}
