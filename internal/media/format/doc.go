// Package format models the stream variants reported by a yt-dlp probe.
//
// Raw probe entries are decoded leniently: numeric fields may arrive as
// numbers, numeric strings, or null, and codecs reported as "none" are treated
// as absent. The Collection queries answer the questions the selection policy
// asks ("is there a progressive stream at 1080p or above?", "what is the best
// video-only height?") without ordering the corpus.
package format
