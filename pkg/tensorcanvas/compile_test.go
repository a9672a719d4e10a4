package tensorcanvas

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bound(b *Builder, h varstore.Handle) bool {
	_, ok := b.Store().Get(h).Backend()
	return ok
}

func TestCompile_VariableToConsumer(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	r := b.Place(op.ReLU, gg.Pt(200, 0))
	drag(b, out(b, v, 0), in(b, r, 0))

	require.NoError(t, b.Compile(context.Background()))

	assert.True(t, b.Compiled())
	vh, rh := b.Node(v).Outputs()[0], b.Node(r).Outputs()[0]
	assert.True(t, bound(b, vh))
	assert.True(t, bound(b, rh))
	assert.Equal(t, op.DefaultShape, b.Store().Get(rh).Shape, "inferred from the input")
}

func TestCompile_EmptyCanvas(t *testing.T) {
	b := newTestBuilder(t)
	require.NoError(t, b.Compile(context.Background()))
	assert.True(t, b.Compiled())
}

func TestCompile_UnconnectedInput(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	r1 := b.Place(op.ReLU, gg.Pt(200, 0))
	loose := b.Place(op.Sigmoid, gg.Pt(200, 200))
	r2 := b.Place(op.ReLU, gg.Pt(400, 0))
	drag(b, out(b, v, 0), in(b, r1, 0))
	drag(b, out(b, r1, 0), in(b, r2, 0))

	err := b.Compile(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnconnectedInput)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, loose, be.Node)
	assert.Equal(t, op.Sigmoid, be.Op)
	assert.Equal(t, 0, be.Input)

	// Nodes before the failure keep their bindings; later ones are untouched.
	assert.True(t, bound(b, b.Node(v).Outputs()[0]))
	assert.True(t, bound(b, b.Node(r1).Outputs()[0]))
	assert.False(t, bound(b, b.Node(loose).Outputs()[0]))
	assert.False(t, bound(b, b.Node(r2).Outputs()[0]))
	assert.True(t, b.Store().Get(b.Node(r2).Outputs()[0]).Shape.IsZero())

	assert.False(t, b.Compiled())
	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func TestCompile_ConsumerPlacedBeforeProducer(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	late := b.Place(op.ReLU, gg.Pt(400, 0))
	early := b.Place(op.ReLU, gg.Pt(200, 0))
	drag(b, out(b, v, 0), in(b, early, 0))
	drag(b, out(b, early, 0), in(b, late, 0))

	err := b.Compile(context.Background())

	assert.ErrorIs(t, err, ErrUnboundVariable)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, late, be.Node)
}

func TestCompile_ShapeMismatch(t *testing.T) {
	b := newTestBuilder(t)
	a := b.Place(op.Variable, gg.Pt(0, 0), WithShape(backend.Shape{Rows: 2, Cols: 3}))
	c := b.Place(op.Variable, gg.Pt(0, 200), WithShape(backend.Shape{Rows: 2, Cols: 3}))
	mm := b.Place(op.MatMul, gg.Pt(200, 100))
	drag(b, out(b, a, 0), in(b, mm, 0))
	drag(b, out(b, c, 0), in(b, mm, 1))

	err := b.Compile(context.Background())

	assert.ErrorIs(t, err, backend.ErrShapeMismatch)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, -1, be.Input)
	assert.Contains(t, be.Error(), "build node 2 (MatMul)")
}

func TestCompile_RebuildsFromScratch(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	r := b.Place(op.ReLU, gg.Pt(200, 0))
	drag(b, out(b, v, 0), in(b, r, 0))

	ctx := context.Background()
	require.NoError(t, b.Compile(ctx))
	require.NoError(t, b.Compile(ctx), "a second compile must not trip on old bindings")

	s := b.Place(op.Sigmoid, gg.Pt(400, 0))
	drag(b, out(b, r, 0), in(b, s, 0))
	require.NoError(t, b.Compile(ctx))
	assert.True(t, bound(b, b.Node(s).Outputs()[0]))
}

func TestCompile_RecoversAfterFailure(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	r := b.Place(op.ReLU, gg.Pt(200, 0))

	ctx := context.Background()
	require.Error(t, b.Compile(ctx))

	drag(b, out(b, v, 0), in(b, r, 0))
	require.NoError(t, b.Compile(ctx))
	assert.True(t, b.Compiled())
}

func TestCompile_Cancelled(t *testing.T) {
	b := newTestBuilder(t)
	b.Place(op.Variable, gg.Pt(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Compile(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, b.Compiled())
}

func TestCompile_Logs(t *testing.T) {
	h := newTestLogHandler()
	b := newTestBuilder(t, WithLogger(slog.New(h)))
	v := b.Place(op.Variable, gg.Pt(0, 0))
	r := b.Place(op.ReLU, gg.Pt(200, 0))
	drag(b, out(b, v, 0), in(b, r, 0))

	require.NoError(t, b.Compile(context.Background()))

	assert.Equal(t, []string{
		"node placed", "node placed", "ports connected",
		"compile starting", "node built", "node built", "compile completed",
	}, h.messages())
}

func TestSelection_BoundAfterCompile(t *testing.T) {
	b := newTestBuilder(t)
	v := b.Place(op.Variable, gg.Pt(0, 0))
	require.NoError(t, b.Compile(context.Background()))

	got := drag(b, out(b, v, 0), out(b, v, 0))

	require.Equal(t, OutcomeSelected, got.Kind)
	assert.True(t, got.Selection.Bound)
	want, _ := b.Store().Get(b.Node(v).Outputs()[0]).Backend()
	assert.Equal(t, want, got.Selection.Backend)
}
