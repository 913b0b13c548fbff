package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/shellkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// RunMetrics holds the instruments recorded for process runs.
type RunMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewRunMetrics creates process run instruments on the given meter.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	runs, err := meter.Int64Counter("process.runs",
		metric.WithDescription("Total number of process runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.runs counter: %w", err)
	}

	duration, err := meter.Float64Histogram("process.duration",
		metric.WithDescription("Wall-clock duration of process runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter("process.active",
		metric.WithDescription("Number of processes currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.active counter: %w", err)
	}

	return &RunMetrics{runs: runs, duration: duration, active: active}, nil
}

// RecordStart increments the active run count.
func (m *RunMetrics) RecordStart(ctx context.Context, command string) {
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrCommand, command)))
}

// RecordEnd decrements active runs and records the finished run.
func (m *RunMetrics) RecordEnd(ctx context.Context, command, outcome string, d time.Duration) {
	cmdAttr := attribute.String(AttrCommand, command)
	m.active.Add(ctx, -1, metric.WithAttributes(cmdAttr))
	m.runs.Add(ctx, 1, metric.WithAttributes(cmdAttr, attribute.String(AttrOutcome, outcome)))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(cmdAttr))
}
