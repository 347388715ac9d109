package includes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// LineSet is a set of 1-based line numbers.
type LineSet map[int]struct{}

// NewLineSet returns a set holding lines.
func NewLineSet(lines ...int) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s.Add(l)
	}
	return s
}

func (s LineSet) Add(line int)    { s[line] = struct{}{} }
func (s LineSet) Remove(line int) { delete(s, line) }

func (s LineSet) Has(line int) bool {
	_, ok := s[line]
	return ok
}

// Sorted returns the lines in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Rewrite overwrites dst with every line of src except those in exclude. Retained lines are copied byte for byte, line terminators included. src and dst
// must be different files.
func Rewrite(src, dst string, exclude LineSet) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("rewrite %s: source and destination are the same file", dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", dst, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", dst, err)
	}

	if err := filterLines(in, out, exclude); err != nil {
		out.Close()
		return fmt.Errorf("rewrite %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("rewrite %s: %w", dst, err)
	}
	return nil
}

func filterLines(r io.Reader, w io.Writer, exclude LineSet) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for lineno := 1; ; lineno++ {
		line, err := br.ReadString('\n')
		if line != "" && !exclude.Has(lineno) {
			if _, werr := bw.WriteString(line); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// copyFile copies src to dst, replacing dst, and gives dst src's permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
