// Package logging assembles structured slog loggers and formatting helpers used
// across dalo.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so download code can tag log lines with run
// IDs, stages, and source URLs. Console output is human-oriented: a header line
// with the run subject followed by a short list of highlighted fields. When a
// log file is configured a JSON copy of every record is teed into it.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the tool.
package logging
