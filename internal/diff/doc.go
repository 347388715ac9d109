// Package diff computes and renders line diffs between an "old" and a "new" text.
//
// A Diff holds both texts and an ordered slice of hunks that, when concatenated, reconstruct both sides. Each hunk is OpEqual, OpInsert, OpDelete, or
// OpReplace. Lines keep their trailing '\n' when the input had one.
//
//	d := diff.DiffText(oldText, newText)
//	fmt.Println(d.RenderUnifiedDiff(false, "a.c.bak", "a.c", 3))
package diff
