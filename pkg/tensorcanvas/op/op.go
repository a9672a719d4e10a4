// Package op describes the operations that can be placed on a canvas.
//
// The set of operation kinds is closed. A Descriptor carries a kind's
// arity and output policy; Build is the compile-time procedure that turns
// one placed node into backend nodes. Nodes reference operations by Kind,
// so a single Registry serves every placement of the same operation.
package op

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// Kind tags an operation.
type Kind uint8

// Operation kinds.
const (
	// Variable is a trainable parameter. Its output is managed.
	Variable Kind = iota + 1
	// Input is a data placeholder fed before each run. Its output is managed.
	Input
	// MatMul multiplies two matrices.
	MatMul
	// Add sums two matrices element-wise.
	Add
	// ReLU is the rectified linear activation.
	ReLU
	// Sigmoid is the logistic activation.
	Sigmoid
	// MSE is the mean squared error between a prediction and a target.
	MSE
)

var kindNames = map[Kind]string{
	Variable: "Variable",
	Input:    "Input",
	MatMul:   "MatMul",
	Add:      "Add",
	ReLU:     "ReLU",
	Sigmoid:  "Sigmoid",
	MSE:      "MSE",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a case-insensitive operation name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Descriptor is the immutable description of an operation.
type Descriptor struct {
	Kind     Kind
	Name     string
	ArityIn  int
	ArityOut int

	// Managed reports whether the outputs are materialized by the variable
	// store rather than bound by Build.
	Managed bool

	// Shape is the output shape allocated at placement. A zero shape means
	// the shape is inferred from the inputs during Build.
	Shape backend.Shape

	// backendOp is the backend op Build appends; zero for managed kinds.
	backendOp backend.Op
}
