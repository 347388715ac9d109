package detectlang

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Lang represents a detected C-family language.
type Lang string

const (
	LangUnknown      Lang = ""
	LangC            Lang = "c"
	LangCpp          Lang = "cpp"
	LangObjectiveC   Lang = "objc"
	LangObjectiveCpp Lang = "objcpp"
)

// UsesImport reports whether l accepts the #import directive in addition to #include.
func (l Lang) UsesImport() bool {
	return l == LangObjectiveC || l == LangObjectiveCpp
}

var extToLang = map[string]Lang{
	".c":   LangC,
	".cpp": LangCpp,
	".cc":  LangCpp,
	".cxx": LangCpp,
	".c++": LangCpp,
	".hpp": LangCpp,
	".hh":  LangCpp,
	".hxx": LangCpp,
	".ipp": LangCpp,
	".inl": LangCpp,
	".m":   LangObjectiveC,
	".mm":  LangObjectiveCpp,
}

// headerExts are shared by every C-family language; their language comes from their neighbors.
var headerExts = map[string]bool{
	".h": true,
}

// DetectFile detects the language of the file at path.
//   - A source extension decides directly (ex: ".mm" is LangObjectiveCpp).
//   - A plain header (".h") takes the dominant language among source files in its directory. Ties and directories without sources give LangC.
//   - Anything else is LangUnknown.
//
// An error is returned only if a header's directory can't be read.
func DetectFile(path string) (Lang, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extToLang[ext]; ok {
		return lang, nil
	}
	if !headerExts[ext] {
		return LangUnknown, nil
	}

	lang, err := dominantInDir(filepath.Dir(path))
	if err != nil {
		return LangUnknown, err
	}
	if lang == LangUnknown {
		return LangC, nil
	}
	return lang, nil
}

func dominantInDir(dir string) (Lang, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return LangUnknown, fmt.Errorf("detectlang: read dir %s: %w", dir, err)
	}

	counts := make(map[Lang]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if lang, ok := extToLang[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			counts[lang]++
		}
	}

	maxCount := 0
	best := LangUnknown
	tied := false
	for lang, count := range counts {
		switch {
		case count > maxCount:
			maxCount = count
			best = lang
			tied = false
		case count == maxCount:
			tied = true
		}
	}
	if tied {
		return LangUnknown, nil
	}
	return best, nil
}
