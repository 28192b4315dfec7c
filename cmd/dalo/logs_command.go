package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dalo/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var raw bool
	var lines int
	var runID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the dalo log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFile()
			if path == "" {
				return fmt.Errorf("paths.log_dir is not set")
			}

			out := cmd.OutOrStdout()
			opts := logs.TailOptions{Offset: -1, Limit: max(lines, 0), Match: logs.MatchRun(runID)}
			if opts.Limit == 0 {
				opts.Offset = 0
			}
			printed := false
			for {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if follow && cmd.Context().Err() != nil {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, renderLogLine(line, raw))
					printed = true
				}
				if !follow {
					if !printed {
						fmt.Fprintln(out, "No log entries available")
					}
					return nil
				}
				opts.Offset = result.Offset
				opts.Follow = true
				opts.Wait = time.Second
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run id (prefix match)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines unchanged")
	return cmd
}

func renderLogLine(line string, raw bool) string {
	if raw {
		return line
	}
	if rec, ok := logs.ParseRecord(line); ok {
		return rec.Summary()
	}
	return strings.TrimRight(line, "\r")
}
