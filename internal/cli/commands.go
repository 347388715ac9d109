package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codalotl/includemin/internal/detectlang"
	"github.com/codalotl/includemin/internal/diff"
	"github.com/codalotl/includemin/internal/includes"
	qcli "github.com/codalotl/includemin/internal/q/cli"
	"github.com/codalotl/includemin/internal/q/shellrun"
	"github.com/codalotl/includemin/internal/simplelogger"
)

// exitInterrupted is the conventional exit code for SIGINT (128+2).
const exitInterrupted = 130

// diffContext is the number of unchanged lines around each change in --diff output.
const diffContext = 3

type rootFlags struct {
	command    *string
	shell      *string
	quiet      *bool
	showDiff   *bool
	color      *string
	objcImport *bool
	version    *bool
}

// runState records the handler's error, which qcli.Run reduces to an exit code.
type runState struct {
	err error
}

func newRootCommand() (*qcli.Command, *runState) {
	state := &runState{}
	root := &qcli.Command{
		Name:  "includemin",
		Short: "Remove #include directives a build does not need",
		Long: strings.TrimSpace(`
Each file is backed up to <file>.bak. Its #include directives are then removed one at a time, in order, and the check
command is run after each removal. A removal is kept when the check succeeds and undone when it fails. Files with
removals keep their backup; other files are restored from it.

The check command runs through the shell in the current directory. Its exit status decides: zero is success, anything
else (including a command that cannot be found) is failure.`),
		Usage: "<file>...",
		Example: strings.TrimSpace(`
includemin src/*.c
includemin -c "make -C build" -q foo.cpp
includemin --diff --command "clang -fsyntax-only -Iinclude src/widget.m" src/widget.m`),
	}

	fs := root.Flags()
	f := rootFlags{
		command:    fs.String("command", 'c', "", "Check command (default from configuration, else \"make\")"),
		shell:      fs.String("shell", 0, "", "Shell that runs the check command (default: /bin/sh -c, or cmd /C on Windows)"),
		quiet:      fs.Bool("quiet", 'q', false, "Discard the check command's output"),
		showDiff:   fs.Bool("diff", 0, false, "Print a unified diff of each changed file against its backup"),
		color:      fs.Choice("color", 0, "", colorModes, "Colorize output (default: auto)"),
		objcImport: fs.Bool("objc-import", 0, false, "Also try removing #import in Objective-C files (.m, .mm, and .h next to them)"),
		version:    fs.Bool("version", 0, false, "Print the version and exit"),
	}

	root.Args = func(args []string) error {
		if *f.version {
			return nil
		}
		return qcli.MinimumArgs(1)(args)
	}
	root.Run = func(c *qcli.Context) error {
		if *f.version {
			fmt.Fprintf(c.Out, "includemin %s\n", Version)
			return nil
		}
		state.err = runMinimize(c, f)
		return state.err
	}
	return root, state
}

func runMinimize(c *qcli.Context, f rootFlags) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	flags := c.Command.Flags()
	var given flagOverrides
	if flags.Changed("command") {
		given.command = f.command
	}
	if flags.Changed("shell") {
		given.shell = f.shell
	}
	if flags.Changed("color") {
		given.color = f.color
	}
	if flags.Changed("objc-import") {
		given.objcImport = f.objcImport
	}
	applyFlags(&cfg, given)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	simplelogger.Log("config: command=%q (%s) shell=%q (%s) color=%s (%s) objcimport=%t (%s)", cfg.Command, cfg.CommandProvidence, cfg.Shell, cfg.ShellProvidence, cfg.Color, cfg.ColorProvidence, cfg.ObjCImport, cfg.ObjCImportProvidence)

	shellArgv := shellrun.DefaultShell()
	if strings.TrimSpace(cfg.Shell) != "" {
		shellArgv = shellrun.ParseShell(cfg.Shell)
	}
	if err := validateStartup(shellArgv); err != nil {
		return err
	}

	runner := &shellrun.Runner{
		Command:  cfg.Command,
		Shell:    shellArgv,
		Stdin:    c.In,
		Stdout:   c.Out,
		Stderr:   c.Err,
		OnResult: logCheck,
	}
	if *f.quiet {
		runner.Stdout, runner.Stderr = io.Discard, io.Discard
	}

	color := shouldColor(cfg.Color, c.Out)
	printer := &progressPrinter{w: c.Out, color: color}

	for _, path := range c.Args {
		res, err := minimizeFile(c.Context, path, cfg.ObjCImport, runner, printer)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				simplelogger.Log("%s: interrupted", path)
				return qcli.ExitError{Code: exitInterrupted, Err: errors.New("Abort")}
			}
			simplelogger.Log("%s: %v", path, err)
			return err
		}
		simplelogger.Log("%s: removed %d of %d directive(s)", path, len(res.Removed), len(res.Directives))

		if *f.showDiff && res.Changed() {
			if err := printDiff(c.Out, res, color); err != nil {
				return err
			}
		}
	}

	if len(c.Args) > 1 {
		printer.summary()
	}
	return nil
}

// minimizeFile runs includes.Minimize on path. Only #include is a candidate unless objcImport is set, in which case Objective-C files also offer their
// #import directives.
func minimizeFile(ctx context.Context, path string, objcImport bool, checker includes.Checker, obs includes.Observer) (includes.Result, error) {
	dialect := includes.DialectC
	if objcImport {
		lang, err := detectlang.DetectFile(path)
		if err != nil {
			return includes.Result{Path: path}, fmt.Errorf("detect language of %s: %w", path, err)
		}
		dialect = includes.DialectFor(lang)
	}
	return includes.Minimize(ctx, path, includes.Options{
		Checker:  checker,
		Dialect:  dialect,
		Observer: obs,
	})
}

func printDiff(w io.Writer, res includes.Result, color bool) error {
	before, err := os.ReadFile(res.BackupPath)
	if err != nil {
		return fmt.Errorf("diff %s: %w", res.Path, err)
	}
	after, err := os.ReadFile(res.Path)
	if err != nil {
		return fmt.Errorf("diff %s: %w", res.Path, err)
	}
	rendered := diff.DiffText(string(before), string(after)).RenderUnifiedDiff(color, res.BackupPath, res.Path, diffContext)
	if rendered == "" {
		return nil
	}
	_, err = io.WriteString(w, rendered+"\n")
	return err
}

func logCheck(res shellrun.Result) {
	simplelogger.Log("check %q: status=%s outcome=%s exit=%d signal=%q duration=%s", res.Command, res.ExecStatus, res.Outcome, res.ExitCode, res.Signal, res.Duration)
}
