// Package ytdlp mediates access to the yt-dlp CLI, the retrieval delegate
// behind every download.
//
// Probe runs a metadata-only "-J" invocation and decodes the format list into
// a format.Collection. Fetch downloads one selector to an output template with
// overwrites forced and partial files disabled, streaming progress through a
// marker-prefixed progress template and reading the realized path from an
// after_move print. Both go through the Executor interface so tests can
// substitute canned output.
package ytdlp
