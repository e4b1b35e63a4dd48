// utils/text.go
package utils

import (
	"strings"
	"unicode"
)

// CleanText maps non-breaking and other unicode spaces to a plain space,
// drops zero-width characters, and trims the result. Newlines are kept.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		case '\n', '\t', '\r':
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
