package config

import (
	"path/filepath"

	"github.com/kbukum/shellkit/observability"
	"github.com/kbukum/shellkit/validation"
)

// Config is the complete shellkit configuration.
//
//	name: build
//	environment: production
//	logging:
//	  level: info
//	exec:
//	  base_dir: /srv/build
//	  timeout: 10m
//	  paths: [/opt/tools/bin]
//	telemetry:
//	  enabled: true
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Exec          ExecConfig           `yaml:"exec" mapstructure:"exec"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Exec.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks the base fields, then struct tags across all sections.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

// Load reads configuration for serviceName, applies defaults and validates.
// An empty name in the file falls back to serviceName. A relative
// exec.base_dir is taken relative to the directory of the config file.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	files, err := loadConfig(serviceName, &cfg, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if dir := files.Dir(); dir != "" && !filepath.IsAbs(cfg.Exec.BaseDir) {
		cfg.Exec.BaseDir = filepath.Join(dir, cfg.Exec.BaseDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
