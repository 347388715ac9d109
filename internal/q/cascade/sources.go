package cascade

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type source interface {
	// name is a human-readable label used in errors.
	name() string

	// values returns lowercased keys mapped to scalar values. A missing source returns an error wrapping fs.ErrNotExist.
	values() (map[string]any, error)

	providence() Providence
}

type mapSource struct {
	m map[string]any
}

func (s *mapSource) name() string { return "defaults" }

func (s *mapSource) providence() Providence { return Providence{SourceType: SourceDefault} }

func (s *mapSource) values() (map[string]any, error) {
	out := make(map[string]any, len(s.m))
	for k, v := range s.m {
		if err := checkScalar(v); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

type jsonFileSource struct {
	path string
}

func (s *jsonFileSource) name() string { return "JSON file " + s.path }

func (s *jsonFileSource) providence() Providence {
	return Providence{SourceType: SourceJSONFile, SourceIdentifier: ExpandPath(s.path)}
}

func (s *jsonFileSource) values() (map[string]any, error) {
	data, err := os.ReadFile(ExpandPath(s.path))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("key %q: %q is not an integer", k, n.String())
			}
			v = int(i)
		}
		if v == nil {
			continue
		}
		if err := checkScalar(v); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

type envSource struct {
	keyToEnv map[string]string
}

func (s *envSource) name() string { return "ENV" }

func (s *envSource) providence() Providence { return Providence{SourceType: SourceEnv} }

// values ignores empty variables: an exported-but-empty variable should not clobber a value from a file.
func (s *envSource) values() (map[string]any, error) {
	out := map[string]any{}
	for key, envVar := range s.keyToEnv {
		if envVar == "" {
			continue
		}
		if v, ok := os.LookupEnv(envVar); ok && v != "" {
			out[strings.ToLower(key)] = v
		}
	}
	return out, nil
}

func checkScalar(v any) error {
	switch v.(type) {
	case string, bool, int:
		return nil
	default:
		return fmt.Errorf("type %T is not allowed", v)
	}
}
