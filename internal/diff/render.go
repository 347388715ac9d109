package diff

import (
	"fmt"
	"strings"

	"github.com/codalotl/includemin/internal/q/termformat"
)

var (
	styleHeader  = termformat.Style{Foreground: termformat.ColorCyan, Bold: true}
	styleHunk    = termformat.Style{Foreground: termformat.ColorMagenta}
	styleDeleted = termformat.Style{Foreground: termformat.ColorRed}
	styleAdded   = termformat.Style{Foreground: termformat.ColorGreen}
)

type taggedLine struct {
	tag  byte // ' ', '+', '-'
	text string
}

// RenderUnifiedDiff returns a unified diff with contextSize unchanged lines around each change. Change groups separated by at most 2*contextSize unchanged
// lines share a hunk. If color, the output includes ANSI color codes. If d has no changes, the result is "".
func (d Diff) RenderUnifiedDiff(color bool, fromFilename string, toFilename string, contextSize int) string {
	if !d.HasChanges() {
		return ""
	}
	if contextSize < 0 {
		contextSize = 0
	}

	colorize := func(s string, style termformat.Style) string {
		if !color {
			return s
		}
		return style.Apply(s)
	}

	var lines []taggedLine
	for _, h := range d.Hunks {
		switch h.Op {
		case OpEqual:
			for _, l := range h.OldLines {
				lines = append(lines, taggedLine{tag: ' ', text: trimEOL(l)})
			}
		default:
			for _, l := range h.OldLines {
				lines = append(lines, taggedLine{tag: '-', text: trimEOL(l)})
			}
			for _, l := range h.NewLines {
				lines = append(lines, taggedLine{tag: '+', text: trimEOL(l)})
			}
		}
	}

	out := []string{
		colorize("--- "+fromFilename, styleHeader),
		colorize("+++ "+toFilename, styleHeader),
	}

	// oldPos/newPos are the 1-based line numbers of lines[i] on each side.
	oldPos, newPos := 1, 1
	i := 0
	for i < len(lines) {
		if lines[i].tag == ' ' {
			oldPos++
			newPos++
			i++
			continue
		}

		start := i
		for back := 0; back < contextSize && start > 0 && lines[start-1].tag == ' '; back++ {
			start--
		}

		// Extend end across changes and short runs of context between them.
		end := i
		for end < len(lines) {
			if lines[end].tag != ' ' {
				end++
				continue
			}
			run := end
			for run < len(lines) && lines[run].tag == ' ' {
				run++
			}
			if run < len(lines) && run-end <= 2*contextSize {
				end = run
				continue
			}
			end = min(end+contextSize, run)
			break
		}

		oldStart := oldPos - (i - start)
		newStart := newPos - (i - start)
		oldCount, newCount := 0, 0
		for _, l := range lines[start:end] {
			if l.tag != '+' {
				oldCount++
			}
			if l.tag != '-' {
				newCount++
			}
		}

		out = append(out, colorize(fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunkStart(oldStart, oldCount), oldCount, hunkStart(newStart, newCount), newCount), styleHunk))
		for _, l := range lines[start:end] {
			text := string(l.tag) + l.text
			switch l.tag {
			case '-':
				out = append(out, colorize(text, styleDeleted))
			case '+':
				out = append(out, colorize(text, styleAdded))
			default:
				out = append(out, text)
			}
		}

		for _, l := range lines[i:end] {
			if l.tag != '+' {
				oldPos++
			}
			if l.tag != '-' {
				newPos++
			}
		}
		i = end
	}

	return strings.Join(out, "\n")
}

// hunkStart follows the unified format, where an empty side is numbered by the line before it.
func hunkStart(start, count int) int {
	if count == 0 {
		return start - 1
	}
	return start
}
