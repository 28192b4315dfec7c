// Package logs reads dalo's JSON log file back for "dalo logs".
//
// Tail returns the last N matching lines or everything after a byte offset,
// and in follow mode polls until new lines arrive or the wait expires.
// ParseRecord decodes one JSON line so callers can filter by run id and print
// a compact summary instead of raw JSON.
package logs
