package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// Run executes a subprocess and waits for it to complete.
//
// With a Timeout the child runs in its own process group: when the timeout
// fires SIGTERM goes to the group, then SIGKILL to whatever is left of it
// after GracePeriod. A canceled ctx kills the child and returns
// ErrInterrupted. After the child exits, Run waits at most GracePeriod for
// its output streams to close.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Argv) == 0 || cmd.Argv[0] == "" {
		return nil, &IOError{Op: "start", Err: ErrNoExecutable}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrInterrupted, err)
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = MergeEnv(os.Environ(), cmd.Env)
	c.Stdin = cmd.Stdin
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}

	var output *bytes.Buffer
	switch cmd.Redirect {
	case RedirectCapture:
		// One writer for both streams keeps the child's interleaving.
		output = &bytes.Buffer{}
		c.Stdout = output
		c.Stderr = output
	case RedirectInherit:
		c.Stdout = writerOr(cmd.Stdout, os.Stdout)
		c.Stderr = writerOr(cmd.Stderr, os.Stderr)
	default:
		out := writerOr(cmd.Stdout, os.Stdout)
		c.Stdout = out
		c.Stderr = out
	}

	finish := func() {}
	if cmd.Timeout > 0 {
		finish = killGroupOnCancel(c, gracePeriod)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)
	finish()

	if c.ProcessState == nil {
		// Never started: missing dir, permission, exec format.
		if ctx.Err() != nil {
			return nil, errors.Join(ErrInterrupted, ctx.Err())
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Timeout: cmd.Timeout}
		}
		return nil, &IOError{Op: "start", Err: err}
	}

	result := &Result{
		ExitCode: exitCode(c.ProcessState),
		Duration: duration,
	}
	if output != nil {
		result.Output = output.Bytes()
	}

	if err != nil {
		switch {
		case ctx.Err() != nil:
			result.ExitCode = -1
			return result, errors.Join(ErrInterrupted, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			result.ExitCode = -1
			return result, &TimeoutError{Timeout: cmd.Timeout}
		}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
	case errors.Is(err, exec.ErrWaitDelay):
		// The child exited on its own; a descendant kept the output open.
		// What it wrote after the grace period is dropped.
	default:
		return result, &IOError{Op: "wait", Err: err}
	}
	if !cmd.Accepts(result.ExitCode) {
		return result, &ExitError{Code: result.ExitCode}
	}
	return result, nil
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
