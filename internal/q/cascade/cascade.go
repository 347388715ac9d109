package cascade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// Source types recorded in Providence.
const (
	SourceDefault  = "default"
	SourceJSONFile = "json_file"
	SourceEnv      = "env"
)

// Providence records where a configuration value came from.
type Providence struct {
	SourceType       string // ex: "default", "env", "json_file"
	SourceIdentifier string // ex: "/path/to/file.json". Empty for sources without identifiers.
}

// IsSet reports whether any source set the value.
func (p Providence) IsSet() bool {
	return p.SourceType != ""
}

func (p Providence) String() string {
	if p.SourceIdentifier == "" {
		return p.SourceType
	}
	return p.SourceType + " " + p.SourceIdentifier
}

// Loader builds a prioritized cascade of configuration sources. Sources are ordered from low to high priority.
type Loader struct {
	sources []source
}

// New returns an empty Loader.
func New() *Loader {
	return &Loader{}
}

// WithDefaults registers m as a source. It should be registered first so every other source overrides it.
func (c *Loader) WithDefaults(m map[string]any) *Loader {
	c.sources = append(c.sources, &mapSource{m: m})
	return c
}

// WithJSONFile registers the JSON file at path (expanded with ExpandPath). The file is read by StrictlyLoad; a missing or unreadable file is skipped.
func (c *Loader) WithJSONFile(path string) *Loader {
	c.sources = append(c.sources, &jsonFileSource{path: path})
	return c
}

// WithNearestJSONFile searches upward from start (or the working directory, if start is empty) for the first readable, non-empty file at the relative path
// fileName and registers it. If none is found, the Loader is unchanged. It panics if fileName is absolute.
func (c *Loader) WithNearestJSONFile(fileName string, start string) *Loader {
	if filepath.IsAbs(fileName) {
		panic("cascade: WithNearestJSONFile fileName must be relative")
	}
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return c
		}
		start = wd
	}
	if found := findNearest(fileName, start); found != "" {
		c.sources = append(c.sources, &jsonFileSource{path: found})
	}
	return c
}

// WithEnv registers environment variables as a source. m maps configuration keys to variable names.
func (c *Loader) WithEnv(m map[string]string) *Loader {
	c.sources = append(c.sources, &envSource{keyToEnv: m})
	return c
}

// StrictlyLoad applies every source to dest (a non-nil pointer to struct) from low to high priority. It fails fast on a source that cannot be parsed or a
// value that cannot be coerced to its field. Missing sources, permission errors and unknown keys are not errors. Fields tagged `cascade:",required"` must be
// set by some source.
func (c *Loader) StrictlyLoad(dest any) error {
	destVal := reflect.ValueOf(dest)
	if dest == nil || destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return errors.New("cascade: dest must be a non-nil pointer to struct")
	}
	structVal := destVal.Elem()
	if structVal.Kind() != reflect.Struct {
		return fmt.Errorf("cascade: dest must be a pointer to struct, got %s", structVal.Kind())
	}

	fields, err := indexFields(structVal.Type())
	if err != nil {
		return err
	}

	present := map[string]bool{}
	for _, src := range c.sources {
		values, err := src.values()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return fmt.Errorf("cascade: %s: %w", src.name(), err)
		}
		prov := src.providence()
		for key, raw := range values {
			f, ok := fields[key]
			if !ok {
				continue
			}
			if err := setScalar(structVal.Field(f.index), raw); err != nil {
				return fmt.Errorf("cascade: %s: %s: %w", src.name(), key, err)
			}
			present[key] = true
			if f.providenceIndex >= 0 {
				structVal.Field(f.providenceIndex).Set(reflect.ValueOf(prov))
			}
		}
	}

	for key, f := range fields {
		if f.required && !present[key] {
			return fmt.Errorf("cascade: missing required key: %s", key)
		}
	}
	return nil
}

type fieldInfo struct {
	index           int
	providenceIndex int
	required        bool
}

var providenceType = reflect.TypeOf(Providence{})

func indexFields(t reflect.Type) (map[string]fieldInfo, error) {
	byName := map[string]int{}
	for i := 0; i < t.NumField(); i++ {
		byName[t.Field(i).Name] = i
	}

	fields := map[string]fieldInfo{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type == providenceType {
			continue
		}
		key, required := parseTag(f)
		if key == "-" {
			continue
		}
		if _, exists := fields[key]; exists {
			return nil, fmt.Errorf("cascade: field key collision for %q", key)
		}
		info := fieldInfo{index: i, providenceIndex: -1, required: required}
		if pi, ok := byName[f.Name+"Providence"]; ok && t.Field(pi).Type == providenceType {
			info.providenceIndex = pi
		}
		fields[key] = info
	}
	return fields, nil
}

func parseTag(f reflect.StructField) (key string, required bool) {
	key = strings.ToLower(f.Name)
	tag := f.Tag.Get("cascade")
	if tag == "" {
		return key, false
	}
	parts := strings.Split(tag, ",")
	if name := strings.TrimSpace(parts[0]); name != "" {
		key = strings.ToLower(name)
	}
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "required" {
			required = true
		}
	}
	return key, required
}

func setScalar(field reflect.Value, raw any) error {
	switch field.Kind() {
	case reflect.String:
		switch v := raw.(type) {
		case string:
			field.SetString(v)
		case int:
			field.SetString(strconv.Itoa(v))
		case bool:
			field.SetString(strconv.FormatBool(v))
		default:
			return fmt.Errorf("cannot coerce %T to string", raw)
		}
	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			field.SetBool(v)
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("cannot parse bool from %q", v)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("cannot coerce %T to bool", raw)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := raw.(type) {
		case int:
			field.SetInt(int64(v))
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("cannot parse int from %q", v)
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("cannot coerce %T to int", raw)
		}
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
