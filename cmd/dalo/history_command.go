package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dalo/internal/history"
	"dalo/internal/textutil"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled = true)")

type runJSON struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Mode         string   `json:"mode"`
	Status       string   `json:"status"`
	Title        string   `json:"title,omitempty"`
	HeightMode   string   `json:"height_mode,omitempty"`
	FPSMode      string   `json:"fps_mode,omitempty"`
	FormatIDs    []string `json:"format_ids,omitempty"`
	Outputs      []string `json:"outputs,omitempty"`
	ErrorKind    string   `json:"error_kind,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	StartedAt    string   `json:"started_at"`
	ElapsedMS    int64    `json:"elapsed_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded download runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					payload := make([]runJSON, 0, len(runs))
					for _, run := range runs {
						payload = append(payload, toRunJSON(run))
					}
					return writeJSON(cmd, payload)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(runs, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, toRunJSON(run))
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(runDetailLines(run), "\n"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
}

func renderHistoryTable(runs []*history.Run, now time.Time) string {
	columns := []column{
		{Header: "ID"},
		{Header: "Started"},
		{Header: "Mode"},
		{Header: "Status"},
		{Header: "Title", MaxWidth: 40},
		{Header: "Elapsed", Align: alignRight},
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := run.Status
		if run.ErrorKind != "" {
			status = "ERR: " + run.ErrorKind
		}
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			run.Mode,
			status,
			textutil.TruncateRunes(orDash(run.Title), 40),
			run.Elapsed().Round(time.Millisecond).String(),
		})
	}
	return renderTable(columns, rows)
}

func runDetailLines(run *history.Run) []string {
	lines := []string{
		"Run:        " + run.ID,
		"URL:        " + run.URL,
		"Mode:       " + run.Mode,
		"Status:     " + run.Status,
		"Started:    " + run.StartedAt.Local().Format(time.RFC3339),
		"Elapsed:    " + run.Elapsed().Round(time.Millisecond).String(),
	}
	if run.Title != "" {
		lines = append(lines, "Title:      "+run.Title)
	}
	if run.Mode == "audio" {
		lines = append(lines, "Audio:      "+run.AudioQuality)
	} else {
		lines = append(lines, fmt.Sprintf("Target:     %dp @ %d fps", run.TargetHeight, run.TargetFPS))
		if run.HeightMode != "" {
			lines = append(lines, fmt.Sprintf("Modes:      height=%s fps=%s", run.HeightMode, run.FPSMode))
		}
	}
	if len(run.FormatIDs) > 0 {
		lines = append(lines, "Formats:    "+strings.Join(run.FormatIDs, ", "))
	}
	for _, path := range run.Outputs() {
		lines = append(lines, "Output:     "+path)
	}
	if run.ErrorKind != "" {
		lines = append(lines, "Error:      "+run.ErrorKind+": "+run.ErrorMessage)
	}
	return lines
}

func toRunJSON(run *history.Run) runJSON {
	return runJSON{
		ID:           run.ID,
		URL:          run.URL,
		Mode:         run.Mode,
		Status:       run.Status,
		Title:        run.Title,
		HeightMode:   run.HeightMode,
		FPSMode:      run.FPSMode,
		FormatIDs:    run.FormatIDs,
		Outputs:      run.Outputs(),
		ErrorKind:    run.ErrorKind,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt.UTC().Format(time.RFC3339),
		ElapsedMS:    run.Elapsed().Milliseconds(),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
