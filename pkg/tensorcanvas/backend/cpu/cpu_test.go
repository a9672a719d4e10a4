package cpu_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend/cpu"
)

func newGraph(t *testing.T) *cpu.Graph {
	t.Helper()
	g, ok := cpu.New(cpu.WithInitRange(0)).NewGraph().(*cpu.Graph)
	require.True(t, ok)
	return g
}

func variable(t *testing.T, g *cpu.Graph, rows, cols int, data ...float64) backend.Handle {
	t.Helper()
	h, err := g.AddVariable(context.Background(), backend.Shape{Rows: rows, Cols: cols})
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, g.Set(h, data))
	}
	return h
}

func TestAddVariable_InvalidShape(t *testing.T) {
	g := newGraph(t)

	_, err := g.AddVariable(context.Background(), backend.Shape{Rows: 0, Cols: 2})
	assert.ErrorIs(t, err, backend.ErrInvalidShape)
}

func TestAddVariable_ZeroInit(t *testing.T) {
	g := newGraph(t)
	h := variable(t, g, 2, 2)

	v, err := g.Value(h)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, v.Data)
}

func TestAddVariable_SeededInitIsDeterministic(t *testing.T) {
	ctx := context.Background()
	shape := backend.Shape{Rows: 3, Cols: 2}

	g1 := cpu.New(cpu.WithSeed(7)).NewGraph()
	g2 := cpu.New(cpu.WithSeed(7)).NewGraph()
	h1, err := g1.AddVariable(ctx, shape)
	require.NoError(t, err)
	h2, err := g2.AddVariable(ctx, shape)
	require.NoError(t, err)

	v1, _ := g1.Value(h1)
	v2, _ := g2.Value(h2)
	assert.Equal(t, v1.Data, v2.Data)
	for _, x := range v1.Data {
		assert.InDelta(t, 0, x, 0.5)
	}
}

func TestMatMul(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	a := variable(t, g, 2, 3, 1, 2, 3, 4, 5, 6)
	b := variable(t, g, 3, 1, 1, 0, 1)

	outs, err := g.AddNode(ctx, backend.OpMatMul, []backend.Handle{a, b})
	require.NoError(t, err)
	require.Len(t, outs, 1)

	shape, err := g.Shape(outs[0])
	require.NoError(t, err)
	assert.Equal(t, backend.Shape{Rows: 2, Cols: 1}, shape)

	require.NoError(t, g.Run(ctx))
	v, err := g.Value(outs[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10}, v.Data)
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	g := newGraph(t)
	a := variable(t, g, 2, 2)
	b := variable(t, g, 3, 1)

	_, err := g.AddNode(context.Background(), backend.OpMatMul, []backend.Handle{a, b})
	assert.ErrorIs(t, err, backend.ErrShapeMismatch)
	assert.Equal(t, 0, g.NodeCount())
}

func TestActivations(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	x := variable(t, g, 1, 3, -1, 0, 2)

	relu, err := g.AddNode(ctx, backend.OpReLU, []backend.Handle{x})
	require.NoError(t, err)
	sig, err := g.AddNode(ctx, backend.OpSigmoid, []backend.Handle{x})
	require.NoError(t, err)
	require.NoError(t, g.Run(ctx))

	rv, _ := g.Value(relu[0])
	assert.Equal(t, []float64{0, 0, 2}, rv.Data)

	sv, _ := g.Value(sig[0])
	assert.InDelta(t, 0.5, sv.Data[1], 1e-12)
	assert.Greater(t, sv.Data[2], sv.Data[1])
}

func TestAddAndMSE(t *testing.T) {
	ctx := context.Background()
	g := newGraph(t)
	a := variable(t, g, 2, 2, 1, 2, 3, 4)
	b := variable(t, g, 2, 2, 1, 1, 1, 1)

	sum, err := g.AddNode(ctx, backend.OpAdd, []backend.Handle{a, b})
	require.NoError(t, err)
	loss, err := g.AddNode(ctx, backend.OpMSE, []backend.Handle{sum[0], a})
	require.NoError(t, err)
	require.NoError(t, g.Run(ctx))

	sv, _ := g.Value(sum[0])
	assert.Equal(t, []float64{2, 3, 4, 5}, sv.Data)

	lv, _ := g.Value(loss[0])
	assert.Equal(t, backend.Shape{Rows: 1, Cols: 1}, lv.Shape)
	assert.InDelta(t, 1.0, lv.Data[0], 1e-12)
}

func TestAddNode_Arity(t *testing.T) {
	g := newGraph(t)
	a := variable(t, g, 1, 1)

	_, err := g.AddNode(context.Background(), backend.OpAdd, []backend.Handle{a})
	assert.ErrorIs(t, err, backend.ErrArity)
}

func TestUnknownHandle(t *testing.T) {
	g := newGraph(t)

	_, err := g.Value(42)
	assert.ErrorIs(t, err, backend.ErrUnknownHandle)
	_, err = g.AddNode(context.Background(), backend.OpReLU, []backend.Handle{3})
	assert.ErrorIs(t, err, backend.ErrUnknownHandle)
}

func TestSet_WrongLength(t *testing.T) {
	g := newGraph(t)
	h := variable(t, g, 2, 2)

	err := g.Set(h, []float64{1, 2, 3})
	assert.ErrorIs(t, err, backend.ErrShapeMismatch)
}

func TestRun_Cancelled(t *testing.T) {
	g := newGraph(t)
	x := variable(t, g, 1, 1)
	_, err := g.AddNode(context.Background(), backend.OpReLU, []backend.Handle{x})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Run(ctx), context.Canceled)
}
