package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("tensorcanvas")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCompileSpan starts a span for a whole compilation.
	StartCompileSpan(ctx context.Context, device string, nodes int) (context.Context, trace.Span)

	// StartBuildSpan starts a span for one node build, a child of the compile span.
	StartBuildSpan(ctx context.Context, node int, op string) (context.Context, trace.Span)

	// StartRunSpan starts a span for a backend run.
	StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
// Configure the global tracer provider before calling this function.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartCompileSpan starts a compile span.
func (m *otelSpanManager) StartCompileSpan(ctx context.Context, device string, nodes int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tensorcanvas.compile",
		trace.WithAttributes(
			attribute.String("device", device),
			attribute.Int("nodes", nodes),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartBuildSpan starts a node build span.
func (m *otelSpanManager) StartBuildSpan(ctx context.Context, node int, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tensorcanvas.build."+op,
		trace.WithAttributes(
			attribute.Int("node", node),
			attribute.String("op", op),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartRunSpan starts a run span.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tensorcanvas.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
