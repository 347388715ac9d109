package termformat

import (
	"strconv"
	"strings"
)

// ANSIReset ends every SGR attribute.
const ANSIReset = "\x1b[0m"

// Color is one of the 8 basic ANSI foreground colors. The zero value is the terminal's default color.
type Color uint8

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// Style is a set of SGR attributes. The zero value applies nothing.
type Style struct {
	Foreground Color
	Bold       bool
}

// Sequence returns the SGR escape sequence that turns s on, or "" for the zero Style.
func (s Style) Sequence() string {
	var params []string
	if s.Bold {
		params = append(params, "1")
	}
	if s.Foreground != ColorDefault {
		params = append(params, strconv.Itoa(30+int(s.Foreground)-1))
	}
	if len(params) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(params, ";") + "m"
}

// Apply wraps str in s's sequence and ANSIReset. The zero Style and the empty string are returned unchanged.
func (s Style) Apply(str string) string {
	seq := s.Sequence()
	if seq == "" || str == "" {
		return str
	}
	return seq + str + ANSIReset
}
