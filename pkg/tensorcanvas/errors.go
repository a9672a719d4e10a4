package tensorcanvas

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
)

// Sentinel errors for compilation.
var (
	// ErrUnconnectedInput indicates an input port that was never connected.
	ErrUnconnectedInput = op.ErrUnconnectedInput

	// ErrUnboundVariable indicates a variable with no backend handle. During
	// Compile this means the producer was placed after its consumer.
	ErrUnboundVariable = op.ErrUnboundVariable
)

// Sentinel errors for execution and inspection.
var (
	// ErrNotCompiled indicates Run, Feed or Value was called without a
	// successfully compiled graph.
	ErrNotCompiled = errors.New("graph not compiled")

	// ErrNotManaged indicates Feed was given a variable that a node
	// computes rather than one the store materializes.
	ErrNotManaged = errors.New("variable is not managed")
)

// BuildError reports the node that stopped a compilation.
type BuildError struct {
	// Node is the failing node.
	Node NodeHandle
	// Op is the node's operation kind.
	Op op.Kind
	// Input is the failing input port, or -1 when the failure is not
	// tied to an input.
	Input int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Input >= 0 {
		return fmt.Sprintf("build node %d (%s) input %d: %v", e.Node, e.Op, e.Input, e.Err)
	}
	return fmt.Sprintf("build node %d (%s): %v", e.Node, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BuildError) Unwrap() error {
	return e.Err
}

func newBuildError(node NodeHandle, kind op.Kind, err error) *BuildError {
	be := &BuildError{Node: node, Op: kind, Input: -1, Err: err}
	var ie *op.InputError
	if errors.As(err, &ie) {
		be.Input = ie.Index
	}
	return be
}
