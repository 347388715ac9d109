package includes

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"
	"strings"

	"github.com/codalotl/includemin/internal/detectlang"
)

// Directive is one include directive found in a file.
type Directive struct {
	Line    int    // 1-based line number.
	Keyword string // Keyword as written (ex: "include", "INCLUDE", "import").
	Header  string // Header reference including its delimiters (ex: "<stdio.h>" or "\"util.h\"").
	Text    string // Entire line, including its line terminator.
}

// Path returns the header reference without its delimiters.
func (d Directive) Path() string {
	if len(d.Header) < 2 {
		return d.Header
	}
	return d.Header[1 : len(d.Header)-1]
}

// String formats d as "#include <stdio.h>".
func (d Directive) String() string {
	return "#" + strings.ToLower(d.Keyword) + " " + d.Header
}

// Dialect selects which directive keywords are recognized.
type Dialect int

const (
	DialectC    Dialect = iota // #include
	DialectObjC                // #include and #import
)

// RE2's \s omits vertical tab, which counts as whitespace around directives.
var dialectPatterns = map[Dialect]*regexp.Regexp{
	DialectC:    regexp.MustCompile(`(?i)^[\s\v]*#[\s\v]*(include)[\s\v]+(<[^>]+>|"[^"]+")`),
	DialectObjC: regexp.MustCompile(`(?i)^[\s\v]*#[\s\v]*(include|import)[\s\v]+(<[^>]+>|"[^"]+")`),
}

// DialectFor returns the dialect for lang. Unknown languages use DialectC.
func DialectFor(lang detectlang.Lang) Dialect {
	if lang.UsesImport() {
		return DialectObjC
	}
	return DialectC
}

func (d Dialect) String() string {
	switch d {
	case DialectC:
		return "c"
	case DialectObjC:
		return "objc"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

func (d Dialect) pattern() *regexp.Regexp {
	if p, ok := dialectPatterns[d]; ok {
		return p
	}
	return dialectPatterns[DialectC]
}

// Match parses line as a directive. ok is false if line is not one. The returned Directive has no Line set.
func (d Dialect) Match(line string) (dir Directive, ok bool) {
	m := d.pattern().FindStringSubmatch(line)
	if m == nil {
		return Directive{}, false
	}
	return Directive{Keyword: m[1], Header: m[2], Text: line}, true
}

// Scan lazily yields the directives read from r in line order. A read error is yielded once, after which the sequence ends.
func Scan(r io.Reader, d Dialect) iter.Seq2[Directive, error] {
	return func(yield func(Directive, error) bool) {
		br := bufio.NewReader(r)
		for lineno := 1; ; lineno++ {
			line, err := br.ReadString('\n')
			if line != "" {
				if dir, ok := d.Match(line); ok {
					dir.Line = lineno
					if !yield(dir, nil) {
						return
					}
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Directive{}, err)
				return
			}
		}
	}
}

// ScanFile is like Scan, but opens path each time the sequence is iterated.
func ScanFile(path string, d Dialect) iter.Seq2[Directive, error] {
	return func(yield func(Directive, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Directive{}, err)
			return
		}
		defer f.Close()
		for dir, err := range Scan(f, d) {
			if !yield(dir, err) {
				return
			}
		}
	}
}

// ReadDirectives returns every directive in path, in line order.
func ReadDirectives(path string, d Dialect) ([]Directive, error) {
	var out []Directive
	for dir, err := range ScanFile(path, d) {
		if err != nil {
			return nil, err
		}
		out = append(out, dir)
	}
	return out, nil
}
