package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Diff is a line diff from OldText to NewText.
//
// Invariants:
//   - concat(Hunks.OldLines) == OldText
//   - concat(Hunks.NewLines) == NewText
type Diff struct {
	OldText string
	NewText string
	Hunks   []Hunk
}

// Hunk is a contiguous group of lines sharing one Op. For OpEqual, OldLines and NewLines are identical. OpInsert has no OldLines; OpDelete has no
// NewLines.
type Hunk struct {
	Op       Op
	OldLines []string
	NewLines []string
}

// HasChanges reports whether any hunk is not OpEqual.
func (d Diff) HasChanges() bool {
	for _, h := range d.Hunks {
		if h.Op != OpEqual {
			return true
		}
	}
	return false
}

// DeletedLines returns every old line that is absent from the new text, in order.
func (d Diff) DeletedLines() []string {
	var out []string
	for _, h := range d.Hunks {
		if h.Op == OpDelete || h.Op == OpReplace {
			out = append(out, h.OldLines...)
		}
	}
	return out
}

// DiffText diffs oldText to newText line by line.
func DiffText(oldText, newText string) Diff {
	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	decode := func(s string) []string {
		out := make([]string, 0, len(s))
		for _, r := range s {
			if idx := int(r); idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var hunks []Hunk
	var dels, ins []string
	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		op := OpReplace
		switch {
		case len(ins) == 0:
			op = OpDelete
		case len(dels) == 0:
			op = OpInsert
		}
		hunks = append(hunks, Hunk{Op: op, OldLines: dels, NewLines: ins})
		dels, ins = nil, nil
	}

	for _, d := range lineDiffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			if lines := decode(d.Text); len(lines) > 0 {
				hunks = append(hunks, Hunk{Op: OpEqual, OldLines: lines, NewLines: lines})
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()

	return Diff{OldText: oldText, NewText: newText, Hunks: hunks}
}

func trimEOL(line string) string {
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
}
