package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/shellkit/errors"
)

// OutcomeOK labels runs that returned a result.
const OutcomeOK = "ok"

// Instrumentation records a span and run metrics around each process run.
// It is safe for concurrent use.
type Instrumentation struct {
	tracer  trace.Tracer
	metrics *RunMetrics
}

// NewInstrumentation builds instrumentation on the given providers.
// Nil providers fall back to the global ones.
func NewInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider) (*Instrumentation, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	metrics, err := NewRunMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	return &Instrumentation{
		tracer:  tp.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

// RunInfo describes a run about to start.
type RunInfo struct {
	RunID   string
	Command string
	Argv    []string
	WorkDir string
}

// StartRun opens a span for the run and marks it active. The returned
// function must be called exactly once with the exit code (or -1) and the
// run's error.
func (in *Instrumentation) StartRun(ctx context.Context, info RunInfo) (context.Context, func(exitCode int, err error)) {
	start := time.Now()
	ctx, span := in.tracer.Start(ctx, SpanProcessRun,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrRunID, info.RunID),
			attribute.String(AttrCommand, info.Command),
			attribute.StringSlice(AttrArgs, info.Argv),
			attribute.String(AttrWorkDir, info.WorkDir),
		),
	)
	in.metrics.RecordStart(ctx, info.Command)

	return ctx, func(exitCode int, err error) {
		d := time.Since(start)
		outcome := Outcome(err)
		span.SetAttributes(
			attribute.Int(AttrExitCode, exitCode),
			attribute.String(AttrOutcome, outcome),
			attribute.Int64(AttrDurationMs, d.Milliseconds()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		in.metrics.RecordEnd(ctx, info.Command, outcome, d)
	}
}

// Outcome maps a run error to a low-cardinality label: "ok" for nil,
// otherwise the lower-cased AppError code.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return strings.ToLower(string(errors.Wrap(err).Code))
}
