package shell

import (
	"fmt"
	"time"
)

// Result is the outcome of a successful run.
type Result struct {
	exitCode int
	output   []byte
	captured bool
	duration time.Duration
}

// ExitCode returns the process exit code. It is always in the accepted set.
func (r *Result) ExitCode() int { return r.exitCode }

// Output returns a copy of the captured combined stdout and stderr, or nil
// when output was not captured.
func (r *Result) Output() []byte {
	if !r.captured {
		return nil
	}
	return append([]byte{}, r.output...)
}

// OutputString returns the captured output as a string.
func (r *Result) OutputString() string { return string(r.output) }

// Captured reports whether output was captured.
func (r *Result) Captured() bool { return r.captured }

// Duration returns how long the process ran.
func (r *Result) Duration() time.Duration { return r.duration }

func (r *Result) String() string {
	if !r.captured {
		return fmt.Sprintf("exit code %d in %s", r.exitCode, r.duration)
	}
	return fmt.Sprintf("exit code %d in %s, %d bytes of output", r.exitCode, r.duration, len(r.output))
}
