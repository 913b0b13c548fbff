package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/shellkit/logger"
	"github.com/kbukum/shellkit/util"
)

// EnvConfigFile names the environment variable that points at a config
// file when none is passed explicitly.
const EnvConfigFile = "SHELLKIT_CONFIG"

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Resolver locates the config and .env files of a build project.
//
// Files are looked up in the project directory, which defaults to the
// working directory:
//
//	<dir>/<name>.yml, <dir>/<name>.yaml
//	<dir>/shellkit.yml, <dir>/shellkit.yaml
//	<dir>/.env.<name>, <dir>/.env
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths. Either
// may be empty.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Dir returns the directory holding the config file, or "" without one.
func (r ResolvedFiles) Dir() string {
	if r.ConfigFile == "" {
		return ""
	}
	return filepath.Dir(r.ConfigFile)
}

// ResolveFiles finds the config and env files for name. Explicit paths in
// opts win; then $SHELLKIT_CONFIG; then the project directory is searched.
func (cr *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	dir := opts.Dir
	if dir == "" {
		if wd, err := cr.FileSystem.Getwd(); err == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	resolved := ResolvedFiles{
		ConfigFile: util.Coalesce(opts.ConfigFile, os.Getenv(EnvConfigFile)),
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(dir, name+".yml", name+".yaml", "shellkit.yml", "shellkit.yaml")
	}
	if resolved.EnvFile == "" {
		// A .env beside an explicit config file belongs to that project.
		if cfgDir := resolved.Dir(); cfgDir != "" && cfgDir != dir {
			resolved.EnvFile = cr.first(cfgDir, ".env."+name, ".env")
		}
		if resolved.EnvFile == "" {
			resolved.EnvFile = cr.first(dir, ".env."+name, ".env")
		}
	}
	return resolved
}

func (cr *Resolver) first(dir string, names ...string) string {
	for _, n := range names {
		if p := filepath.Join(dir, n); cr.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds the loader's dependencies and file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	Dir        string // project directory searched for files
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithDir sets the project directory searched for config and .env files.
func WithDir(dir string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Dir = dir }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads the configuration named name into cfg. The YAML file is
// read first, then the .env file is loaded into the process environment,
// and every environment variable is bound so that EXEC_TIMEOUT sets
// exec.timeout. Missing files are not an error.
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	_, err := loadConfig(name, cfg, opts...)
	return err
}

func loadConfig(name string, cfg any, opts ...LoaderOption) (ResolvedFiles, error) {
	lc := LoaderConfig{FileSystem: &RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(name, lc)
	log := logger.WithComponent("config")
	v := viper.New()

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			log.Warn("config file not found", logger.Fields("path", files.ConfigFile))
			files.ConfigFile = ""
		} else {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return files, fmt.Errorf("read config %s: %w", files.ConfigFile, err)
			}
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields(
				"path", files.EnvFile,
				logger.FieldError, err.Error(),
			))
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return files, fmt.Errorf("unmarshal config %s: %w", name, err)
	}
	log.Debug("config loaded", logger.Fields(
		"config_file", files.ConfigFile,
		"env_file", files.EnvFile,
	))
	return files, nil
}

// bindEnv sets each KEY=VALUE under every dotted form of its key.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists the config keys an environment variable may target.
// Each underscore may separate sections or belong to a field name:
//
//	EXEC_GRACE_PERIOD -> exec_grace_period, exec.grace.period, exec.grace_period
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return util.Unique(variants)
}
