package shell

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/kbukum/shellkit/errors"
)

// Kind classifies a failed run.
type Kind int

const (
	// KindExecutableNotFound: the resolver could not find the command.
	// No process was started.
	KindExecutableNotFound Kind = iota + 1
	// KindAbnormalExit: the process exited with a code outside the accepted set.
	KindAbnormalExit
	// KindTimeout: the process outlived its timeout and was killed.
	KindTimeout
	// KindExecutionFailure: the process could not be started, driven or
	// waited on, including caller cancellation.
	KindExecutionFailure
)

var kindNames = map[Kind]string{
	KindExecutableNotFound: "executable_not_found",
	KindAbnormalExit:       "abnormal_exit",
	KindTimeout:            "timeout",
	KindExecutionFailure:   "execution_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrExecutableNotFound = errors.New("executable not found")
	ErrAbnormalExit       = errors.New("abnormal exit")
	ErrTimeout            = errors.New("timed out")
	ErrExecutionFailure   = errors.New("unable to cleanly execute")
)

// Causes of KindExecutionFailure raised by Exec itself.
var (
	ErrAlreadyRun = errors.New("exec has already been run")
	ErrNoCommand  = errors.New("no command configured")
	ErrNotDir     = errors.New("working directory is not a directory")
)

var kindSentinels = map[Kind]error{
	KindExecutableNotFound: ErrExecutableNotFound,
	KindAbnormalExit:       ErrAbnormalExit,
	KindTimeout:            ErrTimeout,
	KindExecutionFailure:   ErrExecutionFailure,
}

// Error is returned by Exec.Run for every failure.
type Error struct {
	Kind Kind
	// Command is the attempted argv. For KindExecutableNotFound it holds the
	// unresolved name followed by the arguments.
	Command []string
	// ExitCode is the process exit code for KindAbnormalExit, otherwise -1.
	ExitCode int
	Cause    error
}

func newError(kind Kind, argv []string, exitCode int, cause error) *Error {
	return &Error{
		Kind:     kind,
		Command:  append([]string(nil), argv...),
		ExitCode: exitCode,
		Cause:    cause,
	}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("shell: ")
	b.WriteString(kindSentinels[e.Kind].Error())
	if e.Kind == KindAbnormalExit {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	fmt.Fprintf(&b, ": %s", strings.Join(e.Command, " "))
	if detail := e.causeDetail(); detail != "" {
		fmt.Fprintf(&b, ": %s", detail)
	}
	return b.String()
}

// causeDetail renders Cause without repeating what the message already
// says: a leading kind text is dropped, and so is a bare command name.
func (e *Error) causeDetail() string {
	if e.Cause == nil {
		return ""
	}
	msg := e.Cause.Error()
	if rest, ok := strings.CutPrefix(msg, kindSentinels[e.Kind].Error()); ok {
		msg = strings.TrimPrefix(rest, ": ")
	}
	if len(e.Command) > 0 && msg == e.Command[0] {
		return ""
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && kindSentinels[e.Kind] == target
}

// As lets errors.As extract the toolkit AppError view.
func (e *Error) As(target any) bool {
	if p, ok := target.(**apperrors.AppError); ok {
		*p = e.AppError()
		return true
	}
	return false
}

// AppError converts e to the toolkit error model.
func (e *Error) AppError() *apperrors.AppError {
	var appErr *apperrors.AppError
	switch e.Kind {
	case KindExecutableNotFound:
		name := ""
		if len(e.Command) > 0 {
			name = e.Command[0]
		}
		appErr = apperrors.ExecutableNotFound(name)
	case KindAbnormalExit:
		appErr = apperrors.AbnormalExit(e.Command, e.ExitCode)
	case KindTimeout:
		appErr = apperrors.Timeout("process run").WithDetail("argv", e.Command)
	default:
		appErr = apperrors.ExecutionFailure(e.Command, nil)
	}
	if e.Cause != nil {
		appErr.WithCause(e.Cause)
	}
	return appErr
}

// AsError unwraps err to an *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
