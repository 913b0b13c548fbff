package config

import (
	"strings"
	"time"

	"github.com/kbukum/shellkit/util"
)

// Default values for ExecConfig.
const (
	DefaultBaseDir     = "."
	DefaultGracePeriod = 5 * time.Second
)

// ExecConfig holds the defaults every shell.Exec built from a script
// context starts with. Per-call builder methods override them.
type ExecConfig struct {
	// BaseDir is the directory relative working directories resolve against.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir" validate:"required,dir"`
	// Timeout bounds each run. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// GracePeriod is the wait between SIGTERM and SIGKILL on timeout.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0"`
	// Paths are searched for executables before $PATH.
	Paths []string `yaml:"paths" mapstructure:"paths"`
	// Env holds KEY=VALUE overrides of the inherited environment. A list
	// keeps key case, which viper would fold for a map.
	Env []string `yaml:"env" mapstructure:"env" validate:"dive,envassign"`
	// ReadOutput captures combined output instead of passing it through.
	ReadOutput bool `yaml:"read_output" mapstructure:"read_output"`
	// ExitValues lists the accepted exit codes.
	ExitValues []int `yaml:"exit_values" mapstructure:"exit_values" validate:"dive,gte=0,lte=255"`
}

// ApplyDefaults fills unset fields.
func (c *ExecConfig) ApplyDefaults() {
	c.BaseDir = util.Coalesce(c.BaseDir, DefaultBaseDir)
	if c.GracePeriod == 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if len(c.ExitValues) == 0 {
		c.ExitValues = []int{0}
	}
	c.Paths = util.Unique(c.Paths)
}

// EnvMap returns Env as a map. Later entries win.
func (c *ExecConfig) EnvMap() map[string]string {
	if len(c.Env) == 0 {
		return nil
	}
	env := make(map[string]string, len(c.Env))
	for _, kv := range c.Env {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}
