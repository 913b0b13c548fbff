package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"github.com/kbukum/shellkit/logger"
	"github.com/kbukum/shellkit/observability"
	"github.com/kbukum/shellkit/process"
	"github.com/kbukum/shellkit/util"
	"github.com/kbukum/shellkit/validation"
	"github.com/kbukum/shellkit/which"
)

// Exec is a single-use action that runs one external program.
//
// Builder methods return the receiver so calls chain. An Exec is not safe
// for concurrent configuration; Run may be called once.
type Exec struct {
	ctx      Context
	resolver Resolver
	runtime  Runtime
	log      *logger.Logger
	instr    *observability.Instrumentation

	mu    sync.Mutex
	req   Request
	state State
	// err is the first invalid builder call, reported by Run.
	err error
}

// New creates an Exec bound to ctx. A nil ctx resolves relative paths
// against the process working directory.
func New(ctx Context, opts ...Option) *Exec {
	if ctx == nil {
		ctx = workingDirContext{}
	}
	e := &Exec{
		ctx:      ctx,
		resolver: which.New(),
		runtime:  process.Default,
		log:      logger.Get("shell"),
		req: Request{
			WorkDir:    ctx.BaseDir(),
			Redirect:   process.RedirectMerge,
			ExitValues: []int{0},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Command sets the program name and replaces any previous arguments.
func (e *Exec) Command(name string, args ...any) *Exec {
	e.req.Name = name
	e.req.Args = coerce(args)
	if e.state == StateUnconfigured {
		e.state = StateConfigured
	}
	return e
}

// CommandLine splits line into a command and its arguments using shell
// quoting rules. $VAR references expand against the Exec's environment.
// Leading NAME=value words become environment overrides. Globs, command
// substitution and control operators are not supported.
func (e *Exec) CommandLine(line string) (*Exec, error) {
	assigns, fields, err := splitCommandLine(line, process.MergeEnv(os.Environ(), e.req.Env))
	if err != nil {
		return e, newError(KindExecutionFailure, []string{line}, -1, err)
	}
	for _, kv := range assigns {
		name, value, _ := strings.Cut(kv, "=")
		e.Env(name, value)
	}
	e.Command(fields[0])
	e.req.Args = fields[1:]
	return e, nil
}

// Arg appends arguments. Values are rendered with fmt.Sprint; a []string
// value contributes each element.
func (e *Exec) Arg(args ...any) *Exec {
	e.req.Args = append(e.req.Args, coerce(args)...)
	return e
}

// Args replaces the arguments.
func (e *Exec) Args(args ...any) *Exec {
	e.req.Args = coerce(args)
	return e
}

// Path adds directories searched for the executable before $PATH.
// Relative directories resolve against the context base directory.
func (e *Exec) Path(dirs ...string) *Exec {
	for _, dir := range dirs {
		e.req.Paths = append(e.req.Paths, e.ctx.WithBaseDir(dir))
	}
	e.req.Paths = util.Unique(e.req.Paths)
	return e
}

// Paths returns the extra search directories.
func (e *Exec) Paths() []string {
	return append([]string(nil), e.req.Paths...)
}

// WorkingDir sets the directory the process starts in. A relative path
// resolves against the context base directory, not the current directory.
// The directory must exist when Run is called.
func (e *Exec) WorkingDir(path string) *Exec {
	e.req.WorkDir = e.ctx.WithBaseDir(path)
	return e
}

// Env sets an environment variable for the process, overriding any
// inherited value.
func (e *Exec) Env(name, value string) *Exec {
	v := validation.New().Custom(validation.ValidEnvName(name), "env",
		fmt.Sprintf("invalid environment variable name %q", name))
	if !e.check(v) {
		return e
	}
	if e.req.Env == nil {
		e.req.Env = make(map[string]string)
	}
	e.req.Env[name] = value
	return e
}

// ReadOutput toggles capturing the combined output in the Result. When
// off, output passes through to the parent's stdout.
func (e *Exec) ReadOutput(capture bool) *Exec {
	if capture {
		e.req.Redirect = process.RedirectCapture
	} else {
		e.req.Redirect = process.RedirectMerge
	}
	return e
}

// Redirect sets the output policy directly. RedirectInherit keeps stderr
// separate from stdout.
func (e *Exec) Redirect(mode process.Redirect) *Exec {
	e.req.Redirect = mode
	return e
}

// Stdin feeds r to the process instead of the parent's stdin.
func (e *Exec) Stdin(r io.Reader) *Exec {
	e.req.Stdin = r
	return e
}

// Timeout bounds the run. Zero disables the timeout.
func (e *Exec) Timeout(d time.Duration) *Exec {
	if !e.check(validation.New().NotNegative("timeout", int64(d))) {
		return e
	}
	e.req.Timeout = d
	return e
}

// ExitValues replaces the accepted exit codes. With no codes the default
// {0} is restored. Codes outside 0-255 fail the run.
func (e *Exec) ExitValues(codes ...int) *Exec {
	if len(codes) == 0 {
		codes = []int{0}
	}
	v := validation.New()
	for _, code := range codes {
		v.Range("exit_values", code, 0, 255)
	}
	if !e.check(v) {
		return e
	}
	e.req.ExitValues = util.Unique(codes)
	return e
}

// Request returns a snapshot of the current configuration.
func (e *Exec) Request() Request {
	return e.req.clone()
}

// State returns the lifecycle stage.
func (e *Exec) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Run resolves the executable, starts it and waits for it to finish.
//
// On success the exit code is in the accepted set. Every failure is an
// *Error and no Result is returned. A second call fails with
// KindExecutionFailure wrapping ErrAlreadyRun and starts nothing.
func (e *Exec) Run(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.state.Done() {
		e.mu.Unlock()
		return nil, newError(KindExecutionFailure, e.req.CommandLine(), -1, ErrAlreadyRun)
	}
	e.state = StateExecuting
	req, buildErr := e.req.clone(), e.err
	e.mu.Unlock()

	res, err := e.execute(ctx, req, buildErr)

	e.mu.Lock()
	if err != nil {
		e.state = StateFailed
	} else {
		e.state = StateCompleted
	}
	e.mu.Unlock()
	return res, err
}

func (e *Exec) execute(ctx context.Context, req Request, buildErr error) (*Result, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := e.log.WithContext(ctx)

	if buildErr != nil {
		return nil, e.reject(log, newError(KindExecutionFailure, req.CommandLine(), -1, buildErr))
	}
	if req.Name == "" {
		return nil, e.reject(log, newError(KindExecutionFailure, req.CommandLine(), -1, ErrNoCommand))
	}

	path, err := e.resolve(req)
	if err != nil {
		return nil, e.reject(log, newError(KindExecutableNotFound, req.CommandLine(), -1, err))
	}
	argv := append([]string{path}, req.Args...)

	if err := checkDir(req.WorkDir); err != nil {
		return nil, e.reject(log, newError(KindExecutionFailure, argv, -1, err))
	}

	finish := func(int, error) {}
	if e.instr != nil {
		ctx, finish = e.instr.StartRun(ctx, observability.RunInfo{
			RunID:   runID,
			Command: req.Name,
			Argv:    argv,
			WorkDir: req.WorkDir,
		})
	}

	log.Debug("starting process", logger.Fields(
		logger.FieldCommand, req.Name,
		logger.FieldArgv, argv,
		logger.FieldWorkDir, req.WorkDir,
		logger.FieldTimeout, req.Timeout.Milliseconds(),
	))

	pres, perr := e.runtime.Run(ctx, req.command(argv))
	res, runErr := classify(req, argv, pres, perr)

	exitCode := -1
	if res != nil {
		exitCode = res.exitCode
	} else if runErr.Kind == KindAbnormalExit {
		exitCode = runErr.ExitCode
	}

	if runErr != nil {
		finish(exitCode, runErr)
		e.logFailure(log, runErr)
		return nil, runErr
	}
	finish(exitCode, nil)
	log.Info("process finished", logger.MergeWithDuration(logger.Fields(
		logger.FieldCommand, req.Name,
		logger.FieldExitCode, res.exitCode,
	), res.duration))
	return res, nil
}

// resolve consults the extra search paths first, then the resolver. A
// name with a path separator is taken relative to the base directory and
// skips the search. Nothing is cached between runs.
func (e *Exec) resolve(req Request) (string, error) {
	if strings.ContainsRune(req.Name, '/') || strings.ContainsRune(req.Name, os.PathSeparator) {
		return e.resolver.Resolve(e.ctx.WithBaseDir(req.Name))
	}
	if len(req.Paths) > 0 {
		if path, err := which.New(req.Paths...).WithoutSystemPath().Resolve(req.Name); err == nil {
			return path, nil
		}
	}
	return e.resolver.Resolve(req.Name)
}

// classify maps a runtime outcome to a Result or an *Error. Exactly one of
// the return values is non-nil.
func classify(req Request, argv []string, pres *process.Result, perr error) (*Result, *Error) {
	var exitErr *process.ExitError
	switch {
	case perr == nil && pres == nil:
		return nil, newError(KindExecutionFailure, argv, -1, errors.New("runtime returned no result"))
	case perr == nil && !req.Accepts(pres.ExitCode):
		return nil, newError(KindAbnormalExit, argv, pres.ExitCode, nil)
	case perr == nil:
		res := &Result{exitCode: pres.ExitCode, duration: pres.Duration}
		if req.Captures() {
			res.captured = true
			res.output = pres.Output
			if res.output == nil {
				res.output = []byte{}
			}
		}
		return res, nil
	case errors.As(perr, &exitErr):
		return nil, newError(KindAbnormalExit, argv, exitErr.Code, nil)
	case errors.Is(perr, process.ErrTimedOut):
		return nil, newError(KindTimeout, argv, -1, perr)
	default:
		return nil, newError(KindExecutionFailure, argv, -1, perr)
	}
}

func (e *Exec) reject(log *logger.Logger, err *Error) *Error {
	e.logFailure(log, err)
	return err
}

func (e *Exec) logFailure(log *logger.Logger, err *Error) {
	fields := logger.MergeWithError(logger.Fields(
		logger.FieldArgv, err.Command,
		logger.FieldKind, err.Kind.String(),
	), err)
	if err.Kind == KindAbnormalExit {
		fields[logger.FieldExitCode] = err.ExitCode
	}
	if err.Kind == KindExecutionFailure {
		log.Error("process failed", fields)
		return
	}
	log.Warn("process failed", fields)
}

func (e *Exec) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// check records the validator's failure, if any, and reports success.
func (e *Exec) check(v *validation.Validator) bool {
	if appErr := v.Validate(); appErr != nil {
		e.fail(appErr)
		return false
	}
	return true
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	return nil
}

// coerce renders arguments as strings, flattening []string values.
func coerce(args []any) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if ss, ok := a.([]string); ok {
			out = append(out, ss...)
			continue
		}
		out = append(out, util.Strings([]any{a})...)
	}
	return out
}

// splitCommandLine parses a single simple command. It returns the leading
// NAME=value assignments and the expanded words.
func splitCommandLine(line string, env []string) (assigns, fields []string, err error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, nil, err
	}
	if len(file.Stmts) != 1 {
		return nil, nil, fmt.Errorf("expected one command, got %d", len(file.Stmts))
	}
	stmt := file.Stmts[0]
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || stmt.Negated || stmt.Background || len(stmt.Redirs) > 0 {
		return nil, nil, errors.New("only a simple command is supported")
	}

	cfg := &expand.Config{Env: expand.ListEnviron(env...)}
	for _, as := range call.Assigns {
		if as.Append || as.Index != nil || as.Array != nil || as.Naked {
			return nil, nil, fmt.Errorf("unsupported assignment to %s", as.Name.Value)
		}
		value := ""
		if as.Value != nil {
			if value, err = expand.Literal(cfg, as.Value); err != nil {
				return nil, nil, err
			}
		}
		assigns = append(assigns, as.Name.Value+"="+value)
	}

	fields, err = expand.Fields(cfg, call.Args...)
	if err != nil {
		return nil, nil, err
	}
	if len(fields) == 0 {
		return nil, nil, ErrNoCommand
	}
	return assigns, fields, nil
}
