package tensorcanvas

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/observability"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"go.opentelemetry.io/otel/trace"
)

// Compile builds the canvas into a fresh backend graph.
//
// Steps (in order):
//  1. Open a new graph on the device and drop every previous binding
//  2. Materialize managed variables
//  3. Build each node in placement order
//
// Placement order is the build order: a node whose input is produced by a
// node placed after it fails with ErrUnboundVariable. The first failing
// node aborts compilation with a *BuildError. Compile is not
// transactional: variables bound before the failure stay bound, but the
// partial graph is discarded and Run returns ErrNotCompiled until the next
// successful Compile.
func (b *Builder) Compile(ctx context.Context) (compileErr error) {
	b.graph = nil

	startTime := time.Now()
	observability.LogCompileStart(b.cfg.logger, b.device.Name(), len(b.nodes), b.store.Len())

	var span trace.Span
	if b.cfg.tracingEnabled {
		ctx, span = b.cfg.spans.StartCompileSpan(ctx, b.device.Name(), len(b.nodes))
		defer func() {
			b.cfg.spans.EndSpanWithError(span, compileErr)
		}()
	}

	built, err := b.build(ctx)

	duration := time.Since(startTime)
	durationMs := float64(duration.Microseconds()) / 1000
	b.cfg.metrics.RecordCompile(ctx, err == nil, duration)
	if err != nil {
		observability.LogCompileError(b.cfg.logger, err, durationMs, built)
		return err
	}
	observability.LogCompileComplete(b.cfg.logger, durationMs, built)
	return nil
}

// build does the work of Compile and returns the number of nodes built.
func (b *Builder) build(ctx context.Context) (int, error) {
	g := b.device.NewGraph()
	b.store.Reset()

	if err := b.store.Compile(ctx, g); err != nil {
		return 0, fmt.Errorf("compile variables: %w", err)
	}

	for i, n := range b.nodes {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := b.buildNode(ctx, g, NodeHandle(i), n); err != nil {
			return i, err
		}
	}

	b.graph = g
	return len(b.nodes), nil
}

func (b *Builder) buildNode(ctx context.Context, g backend.Graph, h NodeHandle, n *Node) (buildErr error) {
	d := b.cfg.registry.MustLookup(n.kind)

	if b.cfg.tracingEnabled {
		var span trace.Span
		ctx, span = b.cfg.spans.StartBuildSpan(ctx, int(h), d.Name)
		defer func() {
			b.cfg.spans.EndSpanWithError(span, buildErr)
		}()
	}

	start := time.Now()
	err := op.Build(ctx, d, g, b.store, n.inputs, n.outputs)
	duration := time.Since(start)
	b.cfg.metrics.RecordNodeBuild(ctx, d.Name, duration, err)
	if err != nil {
		return newBuildError(h, n.kind, err)
	}
	observability.LogNodeBuild(b.cfg.logger, int(h), d.Name, float64(duration.Microseconds())/1000)
	return nil
}
