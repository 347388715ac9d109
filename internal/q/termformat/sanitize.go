package termformat

import (
	"strings"
	"unicode/utf8"
)

// Sanitize makes untrusted text (file names, lines read from files) safe to print on one terminal line:
//   - C0 control characters and DEL, including \t, \r and \n, become "\xXX" (ex: ESC becomes `\x1B`).
//   - Invalid UTF-8 bytes become U+FFFD.
//
// Everything else is kept.
func Sanitize(s string) string {
	if isClean(s) {
		return s
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i, r := range s {
		switch {
		case isControl(r):
			b.WriteString(`\x`)
			b.WriteByte(hex[r>>4])
			b.WriteByte(hex[r&0xF])
		case r == utf8.RuneError && !literalReplacementAt(s, i):
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isClean(s string) bool {
	for i, r := range s {
		if isControl(r) || (r == utf8.RuneError && !literalReplacementAt(s, i)) {
			return false
		}
	}
	return true
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7F
}

// literalReplacementAt reports whether s holds a correctly encoded U+FFFD at byte offset i.
func literalReplacementAt(s string, i int) bool {
	r, size := utf8.DecodeRuneInString(s[i:])
	return r == utf8.RuneError && size == 3
}
