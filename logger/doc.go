// Package logger provides structured logging for shellkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Process runs are logged
// with the Field* keys declared in fields.go so that every run can be
// correlated by its run_id.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("shell")
//	log.Info("command finished", logger.Fields(logger.FieldExitCode, 0))
package logger
