package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Options struct {
	// Args is the argv excluding the program name (typically os.Args[1:]).
	Args []string

	// In/Out/Err override standard I/O. If nil, defaults are used.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler.
//
// Positional args are in Args. Flag values are read via variables bound at command construction time (ex: fs.Bool(...)).
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes cmd as a CLI program and returns a process exit code:
//   - 0 on success or after -h/--help.
//   - 2 on usage errors (bad flags, rejected args, or a handler's UsageError); the message and help are printed to Err.
//   - the code of a handler's ExitCoder, or 1 for other handler errors; the message is printed to Err.
func Run(ctx context.Context, cmd *Command, opts Options) int {
	if cmd == nil {
		panic("cli: Run called with nil command")
	}
	if cmd.Name == "" {
		panic("cli: Run called with cmd.Name empty")
	}
	if cmd.Run == nil {
		panic("cli: Run called with cmd.Run nil")
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	args, err := parseArgv(cmd, opts.Args)
	if err != nil {
		if errors.Is(err, errHelpRequested) {
			writeHelp(out, cmd)
			return 0
		}
		printUsageError(cmd, err, errOut)
		return 2
	}

	if cmd.Args != nil {
		if err := cmd.Args(args); err != nil {
			return exitForError(cmd, err, errOut, 2)
		}
	}

	c := &Context{
		Context: ctx,
		Command: cmd,
		Args:    args,
		In:      in,
		Out:     out,
		Err:     errOut,
	}
	if err := cmd.Run(c); err != nil {
		return exitForError(cmd, err, errOut, 1)
	}
	return 0
}

var errHelpRequested = errors.New("help requested")

// parseArgv separates flags from positional args. Flags may be interleaved with args; everything after "--" is positional.
func parseArgv(cmd *Command, argv []string) ([]string, error) {
	var positional []string
	for i := 0; i < len(argv); i++ {
		token := argv[i]
		switch {
		case token == "--":
			return append(positional, argv[i+1:]...), nil
		case token == "-h" || token == "--help":
			return nil, errHelpRequested
		case strings.HasPrefix(token, "-") && token != "-":
			consumed, err := cmd.flags.parseFlag(argv, i)
			if err != nil {
				return nil, err
			}
			i += consumed
		default:
			positional = append(positional, token)
		}
	}
	return positional, nil
}

// exitForError prints err and returns its exit code. Errors that are not ExitCoders map to fallback.
func exitForError(cmd *Command, err error, errOut io.Writer, fallback int) int {
	code := fallback
	var ec ExitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}

	switch code {
	case 0:
		return 0
	case 2:
		printUsageError(cmd, err, errOut)
	default:
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(errOut, msg)
		}
	}
	return code
}

func printUsageError(cmd *Command, err error, errOut io.Writer) {
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(errOut, msg)
		fmt.Fprintln(errOut)
	}
	writeHelp(errOut, cmd)
}
