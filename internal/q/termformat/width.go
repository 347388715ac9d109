package termformat

import (
	"slices"
	"strings"

	"github.com/codalotl/includemin/internal/q/uni"
)

// Ellipsis marks text removed by TruncateLeft.
const Ellipsis = "…"

// TextWidth returns the number of cells str occupies in a terminal. CSI escape sequences (ex: SGR color codes) occupy no cells.
func TextWidth(str string) int {
	width := 0
	for str != "" {
		i := strings.Index(str, "\x1b[")
		if i < 0 {
			return width + uni.TextWidth(str)
		}
		width += uni.TextWidth(str[:i])
		str = str[i+csiLength(str[i:]):]
	}
	return width
}

// csiLength returns the byte length of the CSI sequence that s starts with. An unterminated sequence runs to the end of s.
func csiLength(s string) int {
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7E {
			return i + 1
		}
	}
	return len(s)
}

// PadRight appends spaces to str until it is width cells wide. Wider strings are returned unchanged.
func PadRight(str string, width int) string {
	if pad := width - TextWidth(str); pad > 0 {
		return str + strings.Repeat(" ", pad)
	}
	return str
}

// TruncateLeft shortens plain text str to at most width cells by dropping whole grapheme clusters from the front and prefixing Ellipsis.
func TruncateLeft(str string, width int) string {
	if uni.TextWidth(str) <= width {
		return str
	}
	if width <= 0 {
		return ""
	}

	budget := width - uni.TextWidth(Ellipsis)
	clusters := slices.Collect(uni.Graphemes(str))
	kept := len(clusters)
	for used := 0; kept > 0; kept-- {
		w := uni.TextWidth(clusters[kept-1])
		if used+w > budget {
			break
		}
		used += w
	}
	return Ellipsis + strings.Join(clusters[kept:], "")
}
