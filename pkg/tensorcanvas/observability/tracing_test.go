package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs an in-memory span exporter for the test.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("tensorcanvas")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestCompileSpanParentsBuildSpans(t *testing.T) {
	exporter := setupTracingTest(t)
	m := NewSpanManager()

	ctx, compileSpan := m.StartCompileSpan(context.Background(), "cpu", 2)
	_, buildSpan := m.StartBuildSpan(ctx, 1, "MatMul")
	m.EndSpanWithError(buildSpan, nil)
	m.EndSpanWithError(compileSpan, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	build, compile := spans[0], spans[1]
	assert.Equal(t, "tensorcanvas.build.MatMul", build.Name)
	assert.Equal(t, "tensorcanvas.compile", compile.Name)
	assert.Equal(t, compile.SpanContext.SpanID(), build.Parent.SpanID())

	v, ok := attrValue(compile.Attributes, "device")
	require.True(t, ok)
	assert.Equal(t, "cpu", v.AsString())

	v, ok = attrValue(build.Attributes, "node")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.AsInt64())
	assert.Equal(t, codes.Ok, build.Status.Code)
}

func TestEndSpanWithError_RecordsError(t *testing.T) {
	exporter := setupTracingTest(t)
	m := NewSpanManager()

	_, span := m.StartRunSpan(context.Background(), "run-9")
	m.EndSpanWithError(span, errors.New("not compiled"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "tensorcanvas.run", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "not compiled", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSpanManager().EndSpanWithError(nil, errors.New("x"))
	})
}

func TestNoopSpanManager(t *testing.T) {
	var m SpanManager = NoopSpanManager{}
	ctx := context.Background()

	got, span := m.StartCompileSpan(ctx, "cpu", 1)
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	got, _ = m.StartBuildSpan(ctx, 0, "Add")
	assert.Equal(t, ctx, got)
	got, _ = m.StartRunSpan(ctx, "run")
	assert.Equal(t, ctx, got)
	m.EndSpanWithError(span, errors.New("ignored"))
}
