package script

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/kbukum/shellkit/config"
	"github.com/kbukum/shellkit/errors"
	"github.com/kbukum/shellkit/logger"
	"github.com/kbukum/shellkit/observability"
	"github.com/kbukum/shellkit/process"
	"github.com/kbukum/shellkit/shell"
	"github.com/kbukum/shellkit/util"
)

// Context is the environment a script runs actions in. It is safe for
// concurrent use once built; each Exec it returns is independent.
type Context struct {
	baseDir   string
	log       *logger.Logger
	resolver  shell.Resolver
	runtime   shell.Runtime
	instr     *observability.Instrumentation
	defaults  config.ExecConfig
	envFiles  []string
	telemetry *observability.Telemetry
}

var _ shell.Context = (*Context)(nil)

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger handed to every Exec.
func WithLogger(l *logger.Logger) Option {
	return func(c *Context) { c.log = l }
}

// WithResolver replaces the $PATH resolver.
func WithResolver(r shell.Resolver) Option {
	return func(c *Context) { c.resolver = r }
}

// WithRuntime replaces the process runtime.
func WithRuntime(rt shell.Runtime) Option {
	return func(c *Context) { c.runtime = rt }
}

// WithInstrumentation records spans and metrics for every run.
func WithInstrumentation(in *observability.Instrumentation) Option {
	return func(c *Context) { c.instr = in }
}

// WithExecDefaults seeds every Exec with cfg. BaseDir is ignored; it is
// the Context's own.
func WithExecDefaults(cfg config.ExecConfig) Option {
	return func(c *Context) { c.defaults = cfg }
}

// WithEnvFile adds a dotenv file whose variables every Exec receives.
// Relative paths resolve against the base directory. Later files win;
// ExecConfig.Env wins over all files.
func WithEnvFile(path string) Option {
	return func(c *Context) { c.envFiles = append(c.envFiles, path) }
}

// New creates a Context rooted at baseDir, which must be an existing
// directory. It is made absolute.
func New(baseDir string, opts ...Option) (*Context, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.InvalidInput("base_dir", err.Error())
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.NotFound("base_dir", abs).WithCause(err)
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput("base_dir", abs+" is not a directory")
	}

	c := &Context{
		baseDir: abs,
		log:     logger.Get("shell"),
		runtime: process.Default,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.loadEnvFiles(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromConfig builds a Context from a loaded configuration. It initializes
// the global logger and, when enabled, telemetry export. Call Close to
// flush telemetry.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Context, error) {
	logger.Init(&cfg.Logging)
	logger.RegisterDefaults("shell", "script")
	log := logger.Get("script")

	tel, err := observability.Init(ctx, cfg.Name, cfg.Environment, cfg.Telemetry)
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnavailable, "telemetry init failed").WithCause(err)
	}

	base := []Option{
		WithLogger(logger.Get("shell")),
		WithExecDefaults(cfg.Exec),
		WithRuntime(process.NewAdapter(process.Config{GracePeriod: cfg.Exec.GracePeriod})),
	}
	if cfg.Telemetry.Enabled {
		instr, err := observability.NewInstrumentation(nil, nil)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, errors.Internal(err)
		}
		base = append(base, WithInstrumentation(instr))
	}

	c, err := New(cfg.Exec.BaseDir, append(base, opts...)...)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	c.telemetry = tel

	log.Debug("script context ready", logger.Fields(
		"base_dir", c.baseDir,
		"telemetry", cfg.Telemetry.Enabled,
	))
	return c, nil
}

// BaseDir returns the absolute base directory.
func (c *Context) BaseDir() string { return c.baseDir }

// WithBaseDir resolves path against the base directory. Absolute paths
// are only cleaned.
func (c *Context) WithBaseDir(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.baseDir, path)
}

// Logger returns the logger handed to each Exec.
func (c *Context) Logger() *logger.Logger { return c.log }

// Exec returns a new action for name and args, wired to this Context.
func (c *Context) Exec(name string, args ...any) *shell.Exec {
	opts := []shell.Option{
		shell.WithLogger(c.log),
		shell.WithRuntime(c.runtime),
		shell.WithDefaults(c.defaults),
	}
	if c.resolver != nil {
		opts = append(opts, shell.WithResolver(c.resolver))
	}
	if c.instr != nil {
		opts = append(opts, shell.WithInstrumentation(c.instr))
	}
	return shell.New(c, opts...).Command(name, args...)
}

// Close flushes telemetry started by FromConfig.
func (c *Context) Close(ctx context.Context) error {
	if c.telemetry == nil {
		return nil
	}
	return c.telemetry.Shutdown(ctx)
}

// loadEnvFiles merges dotenv files under the configured Env.
func (c *Context) loadEnvFiles() error {
	if len(c.envFiles) == 0 {
		return nil
	}
	merged := make(map[string]string)
	for _, path := range c.envFiles {
		vars, err := godotenv.Read(c.WithBaseDir(path))
		if err != nil {
			return errors.InvalidInput("env_file", path).WithCause(err)
		}
		for k, v := range vars {
			merged[k] = v
		}
	}
	for k, v := range c.defaults.EnvMap() {
		merged[k] = v
	}

	env := make([]string, 0, len(merged))
	for _, k := range util.SortedKeys(merged) {
		env = append(env, k+"="+merged[k])
	}
	c.defaults.Env = env
	return nil
}
