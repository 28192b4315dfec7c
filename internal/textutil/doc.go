// Package textutil turns source titles into the display titles reported with
// run results: unsafe path characters replaced, whitespace trimmed, and the
// text cut to a fixed rune count after NFC normalization.
package textutil
