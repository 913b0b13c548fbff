package process

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoExecutable is returned for a command with an empty argv.
	ErrNoExecutable = errors.New("process: executable is required")
	// ErrTimedOut matches every TimeoutError.
	ErrTimedOut = errors.New("process: timed out")
	// ErrInterrupted is returned when the caller's context ends the run.
	ErrInterrupted = errors.New("process: interrupted")
)

// IOError reports a failure to start, feed or drain the child.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("process: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ExitError reports an exit code outside the accepted set.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("process: exit code %d", e.Code) }

// TimeoutError reports a run killed after exceeding its timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process: killed after exceeding timeout of %s", e.Timeout)
}

// Is makes errors.Is(err, ErrTimedOut) match.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimedOut }
