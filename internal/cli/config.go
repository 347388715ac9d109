package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codalotl/includemin/internal/q/cascade"
)

// Environment variables that override configuration files.
const (
	envCommand = "INCLUDEMIN_COMMAND"
	envShell   = "INCLUDEMIN_SHELL"
	envColor   = "INCLUDEMIN_COLOR"
	envObjC    = "INCLUDEMIN_OBJC_IMPORT"
)

// sourceFlag marks values given on the command line.
const sourceFlag = "flag"

// Color modes.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var colorModes = []string{colorAuto, colorAlways, colorNever}

// Config is includemin's configuration loaded from a cascade of sources. internal/q/cascade matches config.json keys to field names case-insensitively.
type Config struct {
	// Command is the check command run after each trial removal. Defaults to "make".
	Command           string
	CommandProvidence cascade.Providence

	// Shell runs Command (ex: "/bin/bash" or "bash -c"). Empty means the platform shell.
	Shell           string
	ShellProvidence cascade.Providence

	// Color is "auto", "always" or "never".
	Color           string
	ColorProvidence cascade.Providence

	// ObjCImport also makes #import a candidate in Objective-C files. Off by default: only #include is touched.
	ObjCImport           bool
	ObjCImportProvidence cascade.Providence
}

func globalConfigPath() string {
	return cascade.ExpandPath(filepath.Join("~", ".includemin", "config.json"))
}

// loadConfig loads defaults, the global config, the nearest project config above dir (the working directory if empty) and the environment.
func loadConfig(dir string) (Config, error) {
	loader := cascade.New().WithDefaults(map[string]any{
		"command":    "make",
		"color":      colorAuto,
		"objcimport": false,
	})

	loader = loader.WithJSONFile(globalConfigPath())
	if runtime.GOOS == "windows" {
		if lad := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); lad != "" {
			loader = loader.WithJSONFile(filepath.Join(lad, ".includemin", "config.json"))
		}
	}

	loader = loader.WithNearestJSONFile(filepath.Join(".includemin", "config.json"), dir)
	loader = loader.WithEnv(map[string]string{
		"command":    envCommand,
		"shell":      envShell,
		"color":      envColor,
		"objcimport": envObjC,
	})

	var cfg Config
	if err := loader.StrictlyLoad(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// flagOverrides holds the flags given on the command line. A nil field was not given.
type flagOverrides struct {
	command    *string
	shell      *string
	color      *string
	objcImport *bool
}

// applyFlags overrides cfg with the flags in given.
func applyFlags(cfg *Config, given flagOverrides) {
	flagProv := cascade.Providence{SourceType: sourceFlag}
	if given.command != nil {
		cfg.Command, cfg.CommandProvidence = *given.command, flagProv
	}
	if given.shell != nil {
		cfg.Shell, cfg.ShellProvidence = *given.shell, flagProv
	}
	if given.color != nil {
		cfg.Color, cfg.ColorProvidence = *given.color, flagProv
	}
	if given.objcImport != nil {
		cfg.ObjCImport, cfg.ObjCImportProvidence = *given.objcImport, flagProv
	}
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Command) == "" {
		return fmt.Errorf("invalid configuration: command must be non-empty (from %s)", cfg.CommandProvidence)
	}
	switch cfg.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return fmt.Errorf("invalid configuration: color must be one of %s (got %q from %s)", strings.Join(colorModes, ", "), cfg.Color, cfg.ColorProvidence)
	}
	return nil
}
