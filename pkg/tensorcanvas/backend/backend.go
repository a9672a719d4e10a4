// Package backend defines the numeric backend a canvas compiles into.
//
// The canvas core treats the backend as opaque: it asks a Device for a
// fresh Graph, allocates variables in it, appends operation nodes and
// finally hands it over for execution. Package cpu provides an in-process
// implementation; device backends implement the same interfaces.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Shape is the (rows, cols) shape of a matrix-valued tensor.
type Shape struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// Size returns the number of elements in the shape.
func (s Shape) Size() int {
	return s.Rows * s.Cols
}

// IsZero reports whether the shape is unknown.
// Outputs of shape-inferring operations start with a zero shape.
func (s Shape) IsZero() bool {
	return s.Rows == 0 && s.Cols == 0
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Handle identifies a tensor resident in a backend Graph.
type Handle int

// Op is a backend operation code.
type Op uint8

// Backend operation codes.
const (
	OpMatMul Op = iota + 1
	OpAdd
	OpReLU
	OpSigmoid
	OpMSE
)

// String implements fmt.Stringer.
func (o Op) String() string {
	switch o {
	case OpMatMul:
		return "matmul"
	case OpAdd:
		return "add"
	case OpReLU:
		return "relu"
	case OpSigmoid:
		return "sigmoid"
	case OpMSE:
		return "mse"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Tensor is a host copy of a backend tensor's value, stored row-major.
type Tensor struct {
	Shape Shape     `json:"shape"`
	Data  []float64 `json:"data"`
}

// Device creates backend graphs. It plays the role of the execution
// context: one device, many graphs over a session.
type Device interface {
	// Name identifies the device in logs and traces.
	Name() string

	// NewGraph returns an empty graph bound to this device.
	NewGraph() Graph
}

// Graph is a backend computation graph under construction.
//
// Nodes are appended in the order the canvas builds them; the graph does
// not reorder anything. Run evaluates every node in that order.
type Graph interface {
	// AddVariable allocates storage for a tensor of the given shape.
	AddVariable(ctx context.Context, shape Shape) (Handle, error)

	// AddNode appends an operation reading inputs and returns one handle
	// per output. Shape mismatches are reported here.
	AddNode(ctx context.Context, op Op, inputs []Handle) ([]Handle, error)

	// Shape returns the shape of a resident tensor.
	Shape(h Handle) (Shape, error)

	// Set overwrites a variable's value. len(data) must equal its size.
	Set(h Handle, data []float64) error

	// Value copies a tensor's current value to the host.
	Value(h Handle) (Tensor, error)

	// Run evaluates every node once.
	Run(ctx context.Context) error
}

// Sentinel errors returned by Graph implementations.
var (
	// ErrUnknownHandle indicates a handle that was not issued by the graph.
	ErrUnknownHandle = errors.New("unknown backend handle")

	// ErrShapeMismatch indicates incompatible operand shapes.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrArity indicates a wrong number of operands for an op.
	ErrArity = errors.New("wrong number of operands")

	// ErrUnsupportedOp indicates the backend does not implement an op.
	ErrUnsupportedOp = errors.New("unsupported op")

	// ErrInvalidShape indicates a non-positive variable shape.
	ErrInvalidShape = errors.New("invalid shape")
)
