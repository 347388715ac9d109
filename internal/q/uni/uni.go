// Package uni measures text the way a monospace terminal renders it.
package uni

import (
	"iter"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// narrow treats East Asian ambiguous-width runes and emoji-neutral runes as one cell, which matches non-CJK locales.
var narrow = func() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true
	return cond
}()

// TextWidth returns the number of terminal cells s occupies.
func TextWidth(s string) int {
	return narrow.StringWidth(s)
}

// Graphemes yields the grapheme clusters of s in order. Concatenating them gives back s.
func Graphemes(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		it := graphemes.FromString(s)
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}
