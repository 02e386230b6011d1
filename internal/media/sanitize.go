package media

import (
	"strings"
	"unicode"
)

// Extension is the fixed extension for offline media files.
const Extension = ".mp4"

// SanitizeTitle derives the on-disk filename stem for a video title. The
// playback fallback and the prefetch command both call this; the two sides
// must agree byte for byte or fallback lookups miss the files prefetch wrote.
// Filename-illegal characters are stripped, internal whitespace collapses to
// a single space, and the result is trimmed.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.FieldsFunc(b.String(), unicode.IsSpace), " ")
}

// Filename is the sanitized stem plus the fixed extension.
func Filename(title string) string {
	return SanitizeTitle(title) + Extension
}
