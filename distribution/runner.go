package distribution

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"go.ntppool.org/namepick/selector"
)

// ErrTimeout is returned by a Runner when the run exceeded its deadline.
var ErrTimeout = errors.New("run timed out")

// Runner performs one selection of a name from the file at path and
// returns the trimmed output.
type Runner interface {
	Run(ctx context.Context, path string) (string, error)
}

// RunError is a failed run, with whatever the selector wrote to stderr.
type RunError struct {
	Stderr string
	Err    error
}

func (e *RunError) Error() string {
	if len(e.Stderr) > 0 {
		return e.Stderr
	}
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ProcessRunner runs the selector binary as a child process.
type ProcessRunner struct {
	Bin string
	// Args go before the file name
	Args []string
	// Env is added to the current environment
	Env []string
}

func (r *ProcessRunner) Run(ctx context.Context, path string) (string, error) {
	args := append(slices.Clone(r.Args), path)

	cmd := exec.CommandContext(ctx, r.Bin, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	// don't wait forever on pipes held open by grandchildren
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", ErrTimeout
	}
	if err != nil {
		return "", &RunError{Stderr: stderr.String(), Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// InProcessRunner calls the selector directly. The picked name is
// trimmed the same way captured process output is.
type InProcessRunner struct {
	Selector *selector.Selector
}

func (r *InProcessRunner) Run(ctx context.Context, path string) (string, error) {
	res, err := r.Selector.Pick(ctx, path)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &RunError{Err: err}
	}
	return strings.TrimSpace(res.Name), nil
}
