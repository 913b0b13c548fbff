package process

import (
	"context"
	"io"
	"time"
)

// Runtime runs a fully described command. shell.Exec depends on this
// interface so tests can substitute a fake.
type Runtime interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

var _ Runtime = (*Adapter)(nil)

// Config configures a process adapter.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Stdout and Stderr replace the parent's streams for passthrough output.
	Stdout io.Writer `yaml:"-" mapstructure:"-"`
	Stderr io.Writer `yaml:"-" mapstructure:"-"`
}

// Adapter is the default Runtime. It fills per-command gaps from Config.
type Adapter struct {
	config Config
}

// NewAdapter creates a new process adapter.
func NewAdapter(cfg Config) *Adapter {
	return &Adapter{config: cfg}
}

// Default runs commands with the package defaults.
var Default Runtime = NewAdapter(Config{})

// Run executes a command, applying adapter-level defaults.
func (a *Adapter) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && a.config.GracePeriod > 0 {
		cmd.GracePeriod = a.config.GracePeriod
	}
	if cmd.Stdout == nil {
		cmd.Stdout = a.config.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = a.config.Stderr
	}
	return Run(ctx, cmd)
}
