// Package observability wires OpenTelemetry tracing and metrics for
// shellkit process runs.
//
// Init installs OTLP/HTTP trace and metric exporters as the global
// providers. Instrumentation then records one span and a set of metrics for
// every process run:
//
//	process.runs      counter, by command and outcome
//	process.duration  histogram (seconds), by command
//	process.active    up/down counter of runs in flight
//
// When telemetry is disabled the global no-op providers are used and
// instrumentation costs next to nothing.
package observability
