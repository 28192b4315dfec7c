package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxTitleRunes bounds display titles and the title segment of output names.
const MaxTitleRunes = 80

// DefaultTitle is used when the source reports no title.
const DefaultTitle = "video"

// titleReplacer replaces filesystem-unsafe characters with underscores.
var titleReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeTitle converts a source title into the display title reported with
// run results. Unsafe characters become underscores, surrounding whitespace
// is trimmed, and the result is cut to MaxTitleRunes runes after NFC
// normalization so composed characters are not split.
func SanitizeTitle(title string) string {
	if title == "" {
		title = DefaultTitle
	}
	title = strings.TrimSpace(titleReplacer.Replace(norm.NFC.String(title)))
	return TruncateRunes(title, MaxTitleRunes)
}

// TruncateRunes returns at most limit runes of value.
func TruncateRunes(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}
