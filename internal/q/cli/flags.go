package cli

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

type flagKind uint8

const (
	flagBool flagKind = iota + 1
	flagString
	flagChoice
)

func (k flagKind) String() string {
	switch k {
	case flagBool:
		return "bool"
	case flagString:
		return "string"
	case flagChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// FlagSet is a typed flag registry for a command.
//
// Boolean flags take a value only in the --name=value form; a following token is never consumed, so positional args that happen to look like
// booleans (ex: a file named "1") are safe.
type FlagSet struct {
	byLong  map[string]*flagDef
	byShort map[rune]*flagDef

	// set records long names of flags present on the command line, for Changed.
	set map[string]bool
}

type flagDef struct {
	name      string
	shorthand rune
	usage     string
	kind      flagKind
	choices   []string

	boolPtr   *bool
	stringPtr *string
}

func newFlagSet() *FlagSet {
	return &FlagSet{
		byLong:  map[string]*flagDef{},
		byShort: map[rune]*flagDef{},
		set:     map[string]bool{},
	}
}

// Bool defines a boolean flag. shorthand may be 0.
func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	ptr := new(bool)
	*ptr = def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagBool, boolPtr: ptr})
	return ptr
}

// String defines a string flag. shorthand may be 0.
func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	ptr := new(string)
	*ptr = def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagString, stringPtr: ptr})
	return ptr
}

// Choice defines a string flag whose value must be one of choices. def need not be a choice (ex: "" to mean "not given").
func (fs *FlagSet) Choice(name string, shorthand rune, def string, choices []string, usage string) *string {
	if len(choices) == 0 {
		panic("cli: Choice flag needs at least one choice: --" + name)
	}
	ptr := new(string)
	*ptr = def
	fs.add(&flagDef{name: name, shorthand: shorthand, usage: usage, kind: flagChoice, choices: slices.Clone(choices), stringPtr: ptr})
	return ptr
}

// Changed reports whether the flag with long name was given on the command line.
func (fs *FlagSet) Changed(name string) bool {
	if fs == nil {
		return false
	}
	return fs.set[name]
}

func (fs *FlagSet) add(def *flagDef) {
	if def.name == "" {
		panic("cli: flag name must be non-empty")
	}
	if def.name == "help" || def.shorthand == 'h' {
		panic("cli: -h/--help is reserved")
	}
	if _, ok := fs.byLong[def.name]; ok {
		panic("cli: duplicate flag: --" + def.name)
	}
	fs.byLong[def.name] = def
	if def.shorthand != 0 {
		if _, ok := fs.byShort[def.shorthand]; ok {
			panic(fmt.Sprintf("cli: duplicate shorthand flag: -%c", def.shorthand))
		}
		fs.byShort[def.shorthand] = def
	}
}

// sorted returns flags ordered by long name.
func (fs *FlagSet) sorted() []*flagDef {
	if fs == nil {
		return nil
	}
	defs := make([]*flagDef, 0, len(fs.byLong))
	for _, def := range fs.byLong {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].name < defs[j].name })
	return defs
}

// parseFlag parses the flag token argv[idx] and returns how many extra tokens it consumed.
func (fs *FlagSet) parseFlag(argv []string, idx int) (int, error) {
	token := argv[idx]

	var def *flagDef
	var value string
	hasValue := false

	if strings.HasPrefix(token, "--") {
		name := token[2:]
		if i := strings.IndexByte(name, '='); i >= 0 {
			name, value, hasValue = name[:i], name[i+1:], true
		}
		if fs != nil {
			def = fs.byLong[name]
		}
	} else {
		// -x, -x=value or -xvalue
		short := []rune(token[1:])
		if fs != nil && len(short) > 0 {
			def = fs.byShort[short[0]]
		}
		if def != nil && len(short) > 1 {
			rest := string(short[1:])
			value, hasValue = strings.TrimPrefix(rest, "="), true
		}
	}
	if def == nil {
		return 0, Usagef("unknown flag: %s", token)
	}

	consumed := 0
	if !hasValue {
		if def.kind == flagBool {
			value = "true"
		} else {
			if idx+1 >= len(argv) || argv[idx+1] == "--" {
				return 0, Usagef("flag needs a value: %s", token)
			}
			value = argv[idx+1]
			consumed = 1
		}
	}

	if err := def.set(value); err != nil {
		return 0, Usagef("invalid value for %s: %v", def.display(), err)
	}
	fs.set[def.name] = true
	return consumed, nil
}

func (def *flagDef) set(raw string) error {
	switch def.kind {
	case flagBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*def.boolPtr = v
	case flagString:
		*def.stringPtr = raw
	case flagChoice:
		if !slices.Contains(def.choices, raw) {
			return fmt.Errorf("%q is not one of %s", raw, strings.Join(def.choices, ", "))
		}
		*def.stringPtr = raw
	default:
		return fmt.Errorf("unknown flag kind")
	}
	return nil
}

func (def *flagDef) display() string {
	if def.shorthand != 0 {
		return fmt.Sprintf("-%c/--%s", def.shorthand, def.name)
	}
	return "--" + def.name
}
