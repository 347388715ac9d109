package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	qcli "github.com/codalotl/includemin/internal/q/cli"
)

// Version is the includemin version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.3.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
//
// Context, if set, is the parent of the run's context; SIGINT and SIGTERM cancel the run either way.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Context context.Context
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, an I/O or configuration error.
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//   - 130 -> err != nil, the run was interrupted.
//
// Note that in cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	parent := context.Background()
	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.Context != nil {
			parent = opts.Context
		}
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// internal/q/cli returns only an exit code, so we tee stderr to produce a non-nil error when exitCode != 0.
	var stderrBuf bytes.Buffer
	errTee := io.MultiWriter(errW, &stderrBuf)

	root, state := newRootCommand()
	exitCode := qcli.Run(ctx, root, qcli.Options{
		Args: argv,
		In:   in,
		Out:  out,
		Err:  errTee,
	})
	if exitCode == 0 {
		return 0, nil
	}

	if state.err != nil {
		return exitCode, state.err
	}

	// Usage errors never reach the handler; the message is what was printed.
	msg := strings.TrimSpace(stderrBuf.String())
	if i := strings.Index(msg, "\n\n"); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		msg = "command failed"
	}
	return exitCode, errors.New(msg)
}
