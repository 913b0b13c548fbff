// Package process spawns child processes and waits for them.
//
// It is the runtime underneath shell.Exec: it knows nothing about command
// resolution or accepted-exit policy beyond the list it is handed, and
// reports every failure as one of four error shapes (IOError, ExitError,
// TimeoutError, ErrInterrupted).
package process

import (
	"io"
	"time"
)

// Redirect selects where a child's standard output and error go.
type Redirect int

const (
	// RedirectMerge sends stderr into stdout and both to the Stdout writer
	// (the parent's stdout by default).
	RedirectMerge Redirect = iota
	// RedirectCapture merges stderr into stdout and captures the combined
	// stream in memory. Nothing reaches the parent's streams.
	RedirectCapture
	// RedirectInherit keeps stdout and stderr apart and writes them to the
	// Stdout and Stderr writers (the parent's streams by default).
	RedirectInherit
)

var redirectNames = map[Redirect]string{
	RedirectMerge:   "merge",
	RedirectCapture: "capture",
	RedirectInherit: "inherit",
}

func (r Redirect) String() string {
	if name, ok := redirectNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRedirect maps a config value to a Redirect.
func ParseRedirect(s string) (Redirect, bool) {
	for r, name := range redirectNames {
		if name == s {
			return r, true
		}
	}
	return RedirectMerge, false
}

// Command configures a subprocess to execute.
type Command struct {
	// Argv is the full argument vector. Argv[0] is the executable, normally
	// an absolute path already resolved by the caller.
	Argv []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env overrides entries of the inherited environment.
	Env map[string]string
	// Redirect selects the output policy.
	Redirect Redirect
	// Stdin provides input to the process. Nil inherits os.Stdin.
	Stdin io.Reader
	// Stdout and Stderr replace the parent's streams for the passthrough
	// modes. Ignored by RedirectCapture.
	Stdout io.Writer
	Stderr io.Writer
	// ExitValues lists accepted exit codes. Nil accepts only 0.
	ExitValues []int
	// Timeout bounds the run. Zero means no timeout.
	Timeout time.Duration
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to DefaultGracePeriod if zero.
	GracePeriod time.Duration
}

// DefaultGracePeriod is used when Command.GracePeriod is zero.
const DefaultGracePeriod = 5 * time.Second

// Accepts reports whether code is in the command's accepted exit set.
func (c Command) Accepts(code int) bool {
	if c.ExitValues == nil {
		return code == 0
	}
	for _, v := range c.ExitValues {
		if v == code {
			return true
		}
	}
	return false
}
