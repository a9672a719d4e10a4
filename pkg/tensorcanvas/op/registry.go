package op

import (
	"fmt"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// DefaultShape is the output shape of Variable and Input placements unless
// overridden.
var DefaultShape = backend.Shape{Rows: 2, Cols: 2}

// Registry is an immutable table of descriptors indexed by Kind.
// It is safe for concurrent use because it never changes after New.
type Registry struct {
	entries []Descriptor // index = Kind
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithShape overrides the placement shape of a managed kind.
//
// Panics if kind is not managed or shape is not positive, since only
// managed outputs have a shape before Build.
func WithShape(kind Kind, shape backend.Shape) Option {
	return func(r *Registry) {
		d := &r.entries[kind]
		if !d.Managed {
			panic(fmt.Sprintf("op: %s output shape is inferred", kind))
		}
		if shape.Rows <= 0 || shape.Cols <= 0 {
			panic(fmt.Sprintf("op: invalid shape %s for %s", shape, kind))
		}
		d.Shape = shape
	}
}

// New builds the registry of every operation kind.
func New(opts ...Option) *Registry {
	r := &Registry{entries: make([]Descriptor, MSE+1)}
	for _, d := range []Descriptor{
		{Kind: Variable, ArityIn: 0, ArityOut: 1, Managed: true, Shape: DefaultShape},
		{Kind: Input, ArityIn: 0, ArityOut: 1, Managed: true, Shape: DefaultShape},
		{Kind: MatMul, ArityIn: 2, ArityOut: 1, backendOp: backend.OpMatMul},
		{Kind: Add, ArityIn: 2, ArityOut: 1, backendOp: backend.OpAdd},
		{Kind: ReLU, ArityIn: 1, ArityOut: 1, backendOp: backend.OpReLU},
		{Kind: Sigmoid, ArityIn: 1, ArityOut: 1, backendOp: backend.OpSigmoid},
		{Kind: MSE, ArityIn: 2, ArityOut: 1, backendOp: backend.OpMSE},
	} {
		d.Name = d.Kind.String()
		r.entries[d.Kind] = d
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup returns the descriptor for kind and whether it exists.
func (r *Registry) Lookup(kind Kind) (Descriptor, bool) {
	if kind == 0 || int(kind) >= len(r.entries) {
		return Descriptor{}, false
	}
	return r.entries[kind], true
}

// MustLookup returns the descriptor for kind, panicking if it is unknown.
func (r *Registry) MustLookup(kind Kind) Descriptor {
	d, ok := r.Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("op: unknown kind %s", kind))
	}
	return d
}

// Kinds returns every registered kind in declaration order, which is the
// order a palette presents them.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.entries)-1)
	for _, d := range r.entries[1:] {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.entries) - 1
}
