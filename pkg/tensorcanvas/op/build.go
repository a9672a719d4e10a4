package op

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
)

// Sentinel errors for building operations.
var (
	// ErrUnknownKind indicates an operation kind or name that is not registered.
	ErrUnknownKind = errors.New("unknown operation kind")

	// ErrUnconnectedInput indicates an input port that was never connected.
	ErrUnconnectedInput = errors.New("input not connected")

	// ErrUnboundVariable indicates an input whose variable has no backend
	// handle yet, typically because its producer is placed after the consumer.
	ErrUnboundVariable = errors.New("variable has no backend handle")

	// ErrPortCount indicates a node whose port slices disagree with the
	// operation arity.
	ErrPortCount = errors.New("port count does not match arity")
)

// InputError reports which input port failed to resolve.
type InputError struct {
	// Index is the input port index.
	Index int
	// Variable is the connected variable, when there is one.
	Variable varstore.Slot
	// Err is ErrUnconnectedInput or ErrUnboundVariable.
	Err error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("input %d (%s): %v", e.Index, e.Variable, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InputError) Unwrap() error {
	return e.Err
}

// Build compiles one placed operation into g.
//
// Every input must reference a variable that is already bound: either a
// managed variable or the output of a node built earlier. Build adds the
// backend node, binds each output variable and records its inferred shape.
func Build(ctx context.Context, d Descriptor, g backend.Graph, store *varstore.Store, inputs []varstore.Slot, outputs []varstore.Handle) error {
	if len(inputs) != d.ArityIn || len(outputs) != d.ArityOut {
		return fmt.Errorf("%w: %s wants %d/%d, got %d/%d",
			ErrPortCount, d.Name, d.ArityIn, d.ArityOut, len(inputs), len(outputs))
	}

	switch d.Kind {
	case Variable, Input:
		return checkManaged(store, outputs)
	case MatMul, Add, ReLU, Sigmoid, MSE:
		return buildBackendOp(ctx, d.backendOp, g, store, inputs, outputs)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, d.Kind)
	}
}

// checkManaged verifies the store materialized a managed node's outputs.
func checkManaged(store *varstore.Store, outputs []varstore.Handle) error {
	for _, h := range outputs {
		if _, ok := store.Get(h).Backend(); !ok {
			return fmt.Errorf("output %s: %w", h, ErrUnboundVariable)
		}
	}
	return nil
}

func buildBackendOp(ctx context.Context, bop backend.Op, g backend.Graph, store *varstore.Store, inputs []varstore.Slot, outputs []varstore.Handle) error {
	operands, err := resolveInputs(store, inputs)
	if err != nil {
		return err
	}

	results, err := g.AddNode(ctx, bop, operands)
	if err != nil {
		return fmt.Errorf("add %s node: %w", bop, err)
	}
	if len(results) != len(outputs) {
		return fmt.Errorf("%w: backend returned %d outputs for %d ports", ErrPortCount, len(results), len(outputs))
	}

	for i, h := range outputs {
		shape, err := g.Shape(results[i])
		if err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
		store.SetShape(h, shape)
		if err := store.Bind(h, results[i]); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}
	return nil
}

// resolveInputs maps input slots to backend handles.
func resolveInputs(store *varstore.Store, inputs []varstore.Slot) ([]backend.Handle, error) {
	operands := make([]backend.Handle, len(inputs))
	for i, slot := range inputs {
		h, ok := slot.Get()
		if !ok {
			return nil, &InputError{Index: i, Variable: slot, Err: ErrUnconnectedInput}
		}
		b, ok := store.Get(h).Backend()
		if !ok {
			return nil, &InputError{Index: i, Variable: slot, Err: ErrUnboundVariable}
		}
		operands[i] = b
	}
	return operands, nil
}
