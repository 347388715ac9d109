// Package cascade loads layered configuration into a flat Go struct from multiple sources with predictable precedence.
//
// A Loader holds a prioritized list of sources. Register sources from lowest to highest priority using the With* methods, then call StrictlyLoad. The zero
// value of Loader is ready to use; New exists for fluent chaining.
//
// Sources
//   - Defaults from a map[string]any.
//   - JSON files read at load time. WithJSONFile registers a specific path. WithNearestJSONFile searches upward from a starting path for the first
//     readable, non-empty file with a given relative name.
//   - Environment variables mapped to keys via WithEnv. Missing or empty variables are ignored.
//
// Keys are case-insensitive and matched against struct field names (or a `cascade:"name"` tag). Only scalar fields (string, bool, ints) are supported;
// nested objects are rejected. Values are coerced when reasonable (strings to bools/ints, numbers to strings). Unknown keys are ignored.
//
// A field named XProvidence of type Providence records which source last set field X.
//
// Example
//
//	type Config struct {
//	    Command           string `cascade:",required"`
//	    CommandProvidence cascade.Providence
//	}
//
//	var cfg Config
//	err := New().
//	    WithDefaults(map[string]any{"command": "make"}).
//	    WithNearestJSONFile(".tool/config.json", "").
//	    WithEnv(map[string]string{"command": "TOOL_COMMAND"}).
//	    StrictlyLoad(&cfg)
package cascade
