package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records canvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordOutcome records the outcome kind of one dispatch cycle.
	RecordOutcome(ctx context.Context, outcome string)

	// RecordNodeBuild records one node build with its duration and error status.
	RecordNodeBuild(ctx context.Context, op string, duration time.Duration, err error)

	// RecordCompile records a compilation.
	RecordCompile(ctx context.Context, success bool, duration time.Duration)

	// RecordRun records a backend run.
	RecordRun(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	outcomes       metric.Int64Counter
	nodeBuilds     metric.Int64Counter
	nodeErrors     metric.Int64Counter
	buildLatency   metric.Float64Histogram
	compileLatency metric.Float64Histogram
	runLatency     metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("tensorcanvas")

	outcomes, err := meter.Int64Counter("tensorcanvas.dispatch.outcomes",
		metric.WithDescription("Number of dispatch cycles by outcome"),
	)
	if err != nil {
		return nil, err
	}

	nodeBuilds, err := meter.Int64Counter("tensorcanvas.build.nodes",
		metric.WithDescription("Number of node builds"),
	)
	if err != nil {
		return nil, err
	}

	nodeErrors, err := meter.Int64Counter("tensorcanvas.build.errors",
		metric.WithDescription("Number of failed node builds"),
	)
	if err != nil {
		return nil, err
	}

	buildLatency, err := meter.Float64Histogram("tensorcanvas.build.latency_ms",
		metric.WithDescription("Node build latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	compileLatency, err := meter.Float64Histogram("tensorcanvas.compile.latency_ms",
		metric.WithDescription("Compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("tensorcanvas.run.latency_ms",
		metric.WithDescription("Backend run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		outcomes:       outcomes,
		nodeBuilds:     nodeBuilds,
		nodeErrors:     nodeErrors,
		buildLatency:   buildLatency,
		compileLatency: compileLatency,
		runLatency:     runLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordOutcome records a dispatch outcome.
func (m *otelMetrics) RecordOutcome(ctx context.Context, outcome string) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordNodeBuild records a node build.
func (m *otelMetrics) RecordNodeBuild(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	m.nodeBuilds.Add(ctx, 1, attrs)
	m.buildLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, success bool, duration time.Duration) {
	m.compileLatency.Record(ctx, float64(duration.Microseconds())/1000,
		metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRun records a backend run.
func (m *otelMetrics) RecordRun(ctx context.Context, success bool, duration time.Duration) {
	m.runLatency.Record(ctx, float64(duration.Microseconds())/1000,
		metric.WithAttributes(attribute.Bool("success", success)))
}
