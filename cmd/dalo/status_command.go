package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dalo/internal/deps"
	"dalo/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check yt-dlp, ffmpeg, and the configured directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cfg)
			versions := map[string]string{}
			for _, dep := range statuses {
				if dep.Name == deps.NameYTDLP && dep.Available {
					versions[dep.Name] = preflight.ProbeYTDLPVersion(cmd.Context(), dep.Command).Display()
				}
			}
			dirs := preflight.RunAll(cfg)

			var lines []string
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(statuses, versions, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			lines = append(lines, directoryLines(dirs, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Defaults", colorize)...)
			lines = append(lines,
				renderStatusLine("Mode", statusInfo, cfg.Download.Mode, colorize),
				renderStatusLine("Target", statusInfo, fmt.Sprintf("%dp @ %d fps", cfg.Download.VideoHeight, cfg.Download.VideoFPS), colorize),
				renderStatusLine("Audio quality", statusInfo, cfg.Download.AudioQuality, colorize),
				renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize),
			)
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if err := requireDeps(statuses); err != nil {
				return err
			}
			if failed := preflight.Failed(dirs); len(failed) > 0 {
				return errors.New("one or more directories are not usable")
			}
			return nil
		},
	}
}
