// Package shellrun runs a user-supplied command line through the platform shell and classifies how it ended.
package shellrun

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ExecStatus captures how process execution concluded.
type ExecStatus string

const (
	ExecStatusCompleted     ExecStatus = "completed"
	ExecStatusFailedToStart ExecStatus = "failed_to_start"
	ExecStatusTimedOut      ExecStatus = "timed_out"
	ExecStatusCanceled      ExecStatus = "canceled"
	ExecStatusTerminated    ExecStatus = "terminated"
)

// Outcome is a semantic status for the command result.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Runner runs Command through Shell. The zero value (plus a Command) runs in the current directory with the platform shell and captures output.
type Runner struct {
	// Command is an opaque shell command line. Nothing is appended to it.
	Command string

	// Shell is the shell argv that precedes Command (ex: {"/bin/sh", "-c"}). If empty, DefaultShell() is used.
	Shell []string

	// Dir is the working directory. If empty, the current directory is used.
	Dir string

	// Stdin is the command's standard input. If nil, the command reads from the null device.
	Stdin io.Reader

	// Stdout and Stderr receive the command's output as it runs. If both are nil, output is captured into Result.Output instead.
	Stdout io.Writer
	Stderr io.Writer

	// OnResult, if set, is called after every run.
	OnResult func(Result)
}

// Result captures the execution details for a single run.
type Result struct {
	Command    string
	Argv       []string
	Output     string // only when output was captured
	ExecStatus ExecStatus
	ExecError  error
	ExitCode   int
	Signal     string
	Outcome    Outcome
	Duration   time.Duration
}

// DefaultShell returns the shell used when Runner.Shell is empty: "cmd /C" on Windows and "/bin/sh -c" elsewhere.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"/bin/sh", "-c"}
}

// ParseShell splits a configured shell into argv. A bare program gets its command flag appended ("/C" for cmd, "-c" otherwise). An empty string returns
// DefaultShell().
func ParseShell(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return DefaultShell()
	}
	if len(fields) == 1 {
		base := strings.ToLower(filepath.Base(fields[0]))
		if base == "cmd" || base == "cmd.exe" {
			return append(fields, "/C")
		}
		return append(fields, "-c")
	}
	return fields
}

// Run executes the command once and blocks until it exits. Command failures (non-zero exit, not found, killed by a signal) are reported in Result, not as
// an error; an error is returned only for invalid arguments.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r == nil {
		return Result{}, errors.New("shellrun: runner is nil")
	}
	if ctx == nil {
		return Result{}, errors.New("shellrun: context is nil")
	}
	if strings.TrimSpace(r.Command) == "" {
		return Result{}, errors.New("shellrun: command must not be empty")
	}

	shell := r.Shell
	if len(shell) == 0 {
		shell = DefaultShell()
	}
	argv := append(append([]string(nil), shell...), r.Command)

	result := execute(ctx, argv, r.Dir, r.Stdin, r.Stdout, r.Stderr)
	result.Command = r.Command
	if r.OnResult != nil {
		r.OnResult(result)
	}
	return result, nil
}

// Check runs the command and reports whether it succeeded. The only error is ctx's error once ctx is done, so callers can tell an interrupt from a
// failing check.
func (r *Runner) Check(ctx context.Context) (bool, error) {
	res, err := r.Run(ctx)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return res.Outcome == OutcomeSuccess, nil
}

func execute(ctx context.Context, argv []string, dir string, stdin io.Reader, stdout, stderr io.Writer) Result {
	result := Result{Argv: argv}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		result.ExecError = err
		result.ExecStatus = statusFromContextError(err)
		result.ExitCode = -1
		result.Outcome = OutcomeFailed
		return result
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	configureProcess(cmd)

	var captured *lockedBuffer
	if stdout == nil && stderr == nil {
		captured = &lockedBuffer{}
		cmd.Stdout = captured
		cmd.Stderr = captured
	} else {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	if err := cmd.Start(); err != nil {
		result.ExecError = err
		result.ExecStatus = ExecStatusFailedToStart
		result.ExitCode = -1
		result.Outcome = OutcomeFailed
		result.Duration = time.Since(start)
		return result
	}

	waitErr := cmd.Wait()
	result.Duration = time.Since(start)
	if captured != nil {
		result.Output = captured.String()
	}

	state := cmd.ProcessState
	result.ExitCode = -1
	if state != nil {
		result.ExitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			result.Signal = ws.Signal().String()
		}
	}

	ctxErr := ctx.Err()
	result.ExecStatus = determineExecStatus(waitErr, state, ctxErr)
	switch result.ExecStatus {
	case ExecStatusTimedOut, ExecStatusCanceled:
		result.ExecError = ctxErr
	default:
		if waitErr != nil {
			result.ExecError = waitErr
		}
	}
	result.Outcome = determineOutcome(result.ExitCode, result.ExecStatus)
	return result
}

func determineExecStatus(waitErr error, state *os.ProcessState, ctxErr error) ExecStatus {
	if ctxErr != nil {
		return statusFromContextError(ctxErr)
	}
	switch {
	case waitErr == nil:
		return ExecStatusCompleted
	case state == nil:
		return ExecStatusFailedToStart
	default:
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return ExecStatusTerminated
		}
		return ExecStatusCompleted
	}
}

func statusFromContextError(err error) ExecStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return ExecStatusTimedOut
	}
	return ExecStatusCanceled
}

func determineOutcome(exitCode int, status ExecStatus) Outcome {
	if status != ExecStatusCompleted || exitCode != 0 {
		return OutcomeFailed
	}
	return OutcomeSuccess
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
