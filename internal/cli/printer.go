package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/codalotl/includemin/internal/includes"
	"github.com/codalotl/includemin/internal/q/termformat"
)

var (
	styleRemovable = termformat.Style{Foreground: termformat.ColorGreen}
	styleRequired  = termformat.Style{Foreground: termformat.ColorRed}
	styleTotal     = termformat.Style{Bold: true}
)

// maxTableNameWidth caps the file column of the summary table.
const maxTableNameWidth = 48

// shouldColor resolves a color mode against w. "auto" colors only when w is a terminal.
func shouldColor(mode string, w io.Writer) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type fileTally struct {
	name    string // sanitized for display
	found   int
	removed int
}

// progressPrinter writes one line per minimization event and keeps per-file totals. It implements includes.Observer.
//
// Paths and directive text come from the user's files, so they are sanitized before printing.
type progressPrinter struct {
	w     io.Writer
	color bool

	files []fileTally
}

var _ includes.Observer = (*progressPrinter)(nil)

func (p *progressPrinter) paint(s string, style termformat.Style) string {
	if !p.color {
		return s
	}
	return style.Apply(s)
}

func (p *progressPrinter) Found(path string, directives []includes.Directive) {
	name := termformat.Sanitize(path)
	p.files = append(p.files, fileTally{name: name, found: len(directives)})
	fmt.Fprintf(p.w, "%s: Found %d include directive(s)\n", name, len(directives))
}

func (p *progressPrinter) Attempt(path string, d includes.Directive) {
	fmt.Fprintf(p.w, "%s:%d: Attempt to remove %s\n", termformat.Sanitize(path), d.Line, termformat.Sanitize(d.String()))
}

func (p *progressPrinter) Removable(path string, d includes.Directive) {
	fmt.Fprintf(p.w, "%s:%d: %s\n", termformat.Sanitize(path), d.Line, p.paint(termformat.Sanitize(d.String())+" can be removed", styleRemovable))
}

func (p *progressPrinter) Required(path string, d includes.Directive) {
	fmt.Fprintf(p.w, "%s:%d: %s\n", termformat.Sanitize(path), d.Line, p.paint(termformat.Sanitize(d.String())+" is required", styleRequired))
}

func (p *progressPrinter) Done(res includes.Result) {
	if n := len(p.files); n > 0 {
		p.files[n-1].removed = len(res.Removed)
	}
	if len(res.Directives) == 0 {
		return
	}
	name := termformat.Sanitize(res.Path)
	if res.Changed() {
		fmt.Fprintf(p.w, "%s: %s\n", name, p.paint(fmt.Sprintf("Removed %d #include directive(s)", len(res.Removed)), styleTotal))
	} else {
		fmt.Fprintf(p.w, "%s: No #include directives removed\n", name)
	}
}

// summary prints a table of per-file results followed by the run totals.
func (p *progressPrinter) summary() {
	width := 0
	names := make([]string, len(p.files))
	for i, f := range p.files {
		names[i] = termformat.TruncateLeft(f.name, maxTableNameWidth)
		width = max(width, termformat.TextWidth(names[i]))
	}

	found, removed := 0, 0
	for i, f := range p.files {
		found += f.found
		removed += f.removed
		counts := fmt.Sprintf("%d of %d removed", f.removed, f.found)
		if f.removed > 0 {
			counts = p.paint(counts, styleRemovable)
		}
		fmt.Fprintf(p.w, "  %s  %s\n", termformat.PadRight(names[i], width), counts)
	}
	fmt.Fprintln(p.w, p.paint(fmt.Sprintf("Removed %d of %d include directive(s) in %d file(s)", removed, found, len(p.files)), styleTotal))
}
