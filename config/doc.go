// Package config loads shellkit configuration.
//
// It uses Viper to read a YAML file, godotenv to load a .env file, and
// binds every environment variable to the matching nested key, so
// EXEC_TIMEOUT=30s sets exec.timeout.
//
// # Usage
//
//	cfg, err := config.Load("my-tool")
//
// Files are found in the project directory (the working directory unless
// WithDir is given): <name>.yml or shellkit.yml, and .env.<name> or .env.
// $SHELLKIT_CONFIG or WithConfigFile name the config file directly.
//
// Load applies defaults and validates the result; LoadConfig only
// unmarshals into a caller-supplied struct.
package config
