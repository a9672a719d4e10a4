// Package cpu is an in-process backend built on gonum dense matrices.
// It is the reference implementation of backend.Device used by tests and
// the examples.
package cpu

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// Device creates CPU graphs.
type Device struct {
	seed uint64
	span float64
}

// Compile-time interface check.
var _ backend.Device = (*Device)(nil)

// Option configures a Device.
type Option func(*Device)

// WithSeed sets the seed used to initialize variables.
// Default: 1
func WithSeed(seed uint64) Option {
	return func(d *Device) {
		d.seed = seed
	}
}

// WithInitRange sets the half-width of the uniform range variables are
// initialized from. Zero initializes every variable to zeros.
// Default: 0.5
func WithInitRange(span float64) Option {
	return func(d *Device) {
		if span >= 0 {
			d.span = span
		}
	}
}

// New creates a CPU device.
func New(opts ...Option) *Device {
	d := &Device{seed: 1, span: 0.5}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements backend.Device.
func (d *Device) Name() string {
	return "cpu"
}

// NewGraph implements backend.Device.
func (d *Device) NewGraph() backend.Graph {
	return &Graph{
		rng:  rand.New(rand.NewPCG(d.seed, d.seed^0x9e3779b97f4a7c15)),
		span: d.span,
	}
}

// node is one appended operation.
type node struct {
	op     backend.Op
	inputs []backend.Handle
	output backend.Handle
}

// Graph is a CPU computation graph. Tensors live in a flat slice indexed
// by backend.Handle.
type Graph struct {
	mu      sync.RWMutex
	tensors []*mat.Dense
	nodes   []node
	rng     *rand.Rand
	span    float64
}

// Compile-time interface check.
var _ backend.Graph = (*Graph)(nil)

// AddVariable implements backend.Graph.
func (g *Graph) AddVariable(_ context.Context, shape backend.Shape) (backend.Handle, error) {
	if shape.Rows <= 0 || shape.Cols <= 0 {
		return 0, fmt.Errorf("%w: %s", backend.ErrInvalidShape, shape)
	}

	data := make([]float64, shape.Size())
	if g.span > 0 {
		for i := range data {
			data[i] = (g.rng.Float64()*2 - 1) * g.span
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.push(mat.NewDense(shape.Rows, shape.Cols, data)), nil
}

// AddNode implements backend.Graph. Every supported op has one output,
// whose shape is inferred from the operands and allocated immediately.
func (g *Graph) AddNode(_ context.Context, op backend.Op, inputs []backend.Handle) ([]backend.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	operands := make([]*mat.Dense, len(inputs))
	for i, h := range inputs {
		t, err := g.tensor(h)
		if err != nil {
			return nil, err
		}
		operands[i] = t
	}

	rows, cols, err := inferShape(op, operands)
	if err != nil {
		return nil, err
	}

	out := g.push(mat.NewDense(rows, cols, nil))
	g.nodes = append(g.nodes, node{
		op:     op,
		inputs: append([]backend.Handle(nil), inputs...),
		output: out,
	})
	return []backend.Handle{out}, nil
}

// Shape implements backend.Graph.
func (g *Graph) Shape(h backend.Handle) (backend.Shape, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, err := g.tensor(h)
	if err != nil {
		return backend.Shape{}, err
	}
	r, c := t.Dims()
	return backend.Shape{Rows: r, Cols: c}, nil
}

// Set implements backend.Graph.
func (g *Graph) Set(h backend.Handle, data []float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, err := g.tensor(h)
	if err != nil {
		return err
	}
	r, c := t.Dims()
	if len(data) != r*c {
		return fmt.Errorf("%w: %d values for %dx%d tensor", backend.ErrShapeMismatch, len(data), r, c)
	}
	copy(t.RawMatrix().Data, data)
	return nil
}

// Value implements backend.Graph.
func (g *Graph) Value(h backend.Handle) (backend.Tensor, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, err := g.tensor(h)
	if err != nil {
		return backend.Tensor{}, err
	}
	r, c := t.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, t.RawRowView(i)...)
	}
	return backend.Tensor{Shape: backend.Shape{Rows: r, Cols: c}, Data: data}, nil
}

// Run implements backend.Graph.
func (g *Graph) Run(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range g.nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		operands := make([]*mat.Dense, len(n.inputs))
		for i, h := range n.inputs {
			operands[i] = g.tensors[h]
		}
		if err := eval(n.op, g.tensors[n.output], operands); err != nil {
			return fmt.Errorf("run %s: %w", n.op, err)
		}
	}
	return nil
}

// Len returns the number of resident tensors.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tensors)
}

// NodeCount returns the number of appended operation nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) push(t *mat.Dense) backend.Handle {
	g.tensors = append(g.tensors, t)
	return backend.Handle(len(g.tensors) - 1)
}

func (g *Graph) tensor(h backend.Handle) (*mat.Dense, error) {
	if h < 0 || int(h) >= len(g.tensors) {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnknownHandle, h)
	}
	return g.tensors[h], nil
}

// inferShape validates operands and returns the output shape for op.
func inferShape(op backend.Op, in []*mat.Dense) (int, int, error) {
	want := 2
	if op == backend.OpReLU || op == backend.OpSigmoid {
		want = 1
	}
	if len(in) != want {
		return 0, 0, fmt.Errorf("%w: %s takes %d, got %d", backend.ErrArity, op, want, len(in))
	}

	ar, ac := in[0].Dims()
	switch op {
	case backend.OpReLU, backend.OpSigmoid:
		return ar, ac, nil
	case backend.OpMatMul:
		br, bc := in[1].Dims()
		if ac != br {
			return 0, 0, fmt.Errorf("%w: matmul %dx%d by %dx%d", backend.ErrShapeMismatch, ar, ac, br, bc)
		}
		return ar, bc, nil
	case backend.OpAdd, backend.OpMSE:
		br, bc := in[1].Dims()
		if ar != br || ac != bc {
			return 0, 0, fmt.Errorf("%w: %s %dx%d with %dx%d", backend.ErrShapeMismatch, op, ar, ac, br, bc)
		}
		if op == backend.OpMSE {
			return 1, 1, nil
		}
		return ar, ac, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", backend.ErrUnsupportedOp, op)
	}
}

// eval computes op into dst.
func eval(op backend.Op, dst *mat.Dense, in []*mat.Dense) error {
	switch op {
	case backend.OpMatMul:
		dst.Mul(in[0], in[1])
	case backend.OpAdd:
		dst.Add(in[0], in[1])
	case backend.OpReLU:
		dst.Apply(func(_, _ int, v float64) float64 {
			return math.Max(0, v)
		}, in[0])
	case backend.OpSigmoid:
		dst.Apply(func(_, _ int, v float64) float64 {
			return 1 / (1 + math.Exp(-v))
		}, in[0])
	case backend.OpMSE:
		r, c := in[0].Dims()
		var diff mat.Dense
		diff.Sub(in[0], in[1])
		diff.MulElem(&diff, &diff)
		dst.Set(0, 0, mat.Sum(&diff)/float64(r*c))
	default:
		return fmt.Errorf("%w: %s", backend.ErrUnsupportedOp, op)
	}
	return nil
}
