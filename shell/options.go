package shell

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kbukum/shellkit/config"
	"github.com/kbukum/shellkit/logger"
	"github.com/kbukum/shellkit/observability"
	"github.com/kbukum/shellkit/process"
)

// Context supplies the base directory relative paths resolve against.
type Context interface {
	BaseDir() string
	// WithBaseDir returns path unchanged if absolute, otherwise joined
	// onto BaseDir.
	WithBaseDir(path string) string
}

// Resolver maps an executable name to an absolute path.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Runtime starts a process and waits for it.
type Runtime interface {
	Run(ctx context.Context, cmd process.Command) (*process.Result, error)
}

// Option configures an Exec.
type Option func(*Exec)

// WithResolver replaces the $PATH resolver.
func WithResolver(r Resolver) Option {
	return func(e *Exec) { e.resolver = r }
}

// WithRuntime replaces process.Default.
func WithRuntime(rt Runtime) Option {
	return func(e *Exec) { e.runtime = rt }
}

// WithLogger sets the logger runs are reported to.
func WithLogger(l *logger.Logger) Option {
	return func(e *Exec) { e.log = l }
}

// WithInstrumentation records a span and metrics for the run.
func WithInstrumentation(in *observability.Instrumentation) Option {
	return func(e *Exec) { e.instr = in }
}

// WithDefaults seeds the request from configuration. Builder calls made
// afterwards override these values.
func WithDefaults(cfg config.ExecConfig) Option {
	return func(e *Exec) {
		e.Path(cfg.Paths...)
		for k, v := range cfg.EnvMap() {
			e.Env(k, v)
		}
		e.ReadOutput(cfg.ReadOutput)
		e.Timeout(cfg.Timeout)
		e.req.GracePeriod = cfg.GracePeriod
		if len(cfg.ExitValues) > 0 {
			e.ExitValues(cfg.ExitValues...)
		}
	}
}

// workingDirContext resolves against the process working directory. Used
// when New is given a nil Context.
type workingDirContext struct{}

func (workingDirContext) BaseDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

func (c workingDirContext) WithBaseDir(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.BaseDir(), path)
}
