// Package varstore maps stable variable handles to tensor shapes and,
// once a graph has been compiled, to backend-resident handles.
//
// Entries are never removed, so a Handle stays valid for the lifetime of
// the Store that issued it.
package varstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
)

// Sentinel errors for store operations.
var (
	// ErrAlreadyBound indicates a second backend binding for a variable
	// within one compile session.
	ErrAlreadyBound = errors.New("variable already bound")
)

// Handle is an opaque index into a Store.
type Handle int

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("v%d", int(h))
}

// Variable describes one store entry.
type Variable struct {
	// Shape is the tensor shape. Outputs of shape-inferring operations
	// start with a zero shape and are updated by their build procedure.
	Shape backend.Shape

	// Managed variables are materialized by Store.Compile. Unmanaged ones
	// are bound by the build procedure of the node that produces them.
	Managed bool

	backend backend.Handle
	bound   bool
}

// Backend returns the backend handle and whether one has been bound.
func (v Variable) Backend() (backend.Handle, bool) {
	return v.backend, v.bound
}

// Store is the variable indirection table.
// Store is not safe for concurrent use.
type Store struct {
	vars []Variable
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Add registers a transient variable. No backend allocation is implied.
func (s *Store) Add(shape backend.Shape) Handle {
	s.vars = append(s.vars, Variable{Shape: shape})
	return Handle(len(s.vars) - 1)
}

// AddManaged registers a variable that Compile allocates backend storage for.
func (s *Store) AddManaged(shape backend.Shape) Handle {
	s.vars = append(s.vars, Variable{Shape: shape, Managed: true})
	return Handle(len(s.vars) - 1)
}

// Get returns a copy of the variable.
//
// Panics if h was not issued by this store.
func (s *Store) Get(h Handle) Variable {
	return s.vars[s.index(h)]
}

// SetShape updates a variable's shape in place.
//
// Panics if h was not issued by this store.
func (s *Store) SetShape(h Handle, shape backend.Shape) {
	s.vars[s.index(h)].Shape = shape
}

// Bind records the backend handle for a variable.
// Returns ErrAlreadyBound if the variable is already bound.
//
// Panics if h was not issued by this store.
func (s *Store) Bind(h Handle, b backend.Handle) error {
	v := &s.vars[s.index(h)]
	if v.bound {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, h)
	}
	v.backend = b
	v.bound = true
	return nil
}

// Len returns the number of variables.
func (s *Store) Len() int {
	return len(s.vars)
}

// Handles returns every issued handle in allocation order.
func (s *Store) Handles() []Handle {
	hs := make([]Handle, len(s.vars))
	for i := range s.vars {
		hs[i] = Handle(i)
	}
	return hs
}

// Reset drops every backend binding so the store can be compiled into a
// fresh graph. Shapes and handles are kept.
func (s *Store) Reset() {
	for i := range s.vars {
		s.vars[i].backend = 0
		s.vars[i].bound = false
	}
}

// Compile allocates backend storage for every managed variable and binds
// the result. Transient variables are left for their producing node.
func (s *Store) Compile(ctx context.Context, g backend.Graph) error {
	for i := range s.vars {
		v := &s.vars[i]
		if !v.Managed {
			continue
		}
		if v.bound {
			return fmt.Errorf("%w: %s", ErrAlreadyBound, Handle(i))
		}
		b, err := g.AddVariable(ctx, v.Shape)
		if err != nil {
			return fmt.Errorf("materialize %s: %w", Handle(i), err)
		}
		v.backend = b
		v.bound = true
	}
	return nil
}

func (s *Store) index(h Handle) int {
	if h < 0 || int(h) >= len(s.vars) {
		panic(fmt.Sprintf("varstore: unknown handle %s", h))
	}
	return int(h)
}

// Slot is an optional variable handle, used for node input ports that may
// not be connected yet. The zero Slot is empty.
type Slot struct {
	handle Handle
	set    bool
}

// Some returns a slot holding h.
func Some(h Handle) Slot {
	return Slot{handle: h, set: true}
}

// Get returns the held handle and whether the slot is set.
func (s Slot) Get() (Handle, bool) {
	return s.handle, s.set
}

// IsSet reports whether the slot holds a handle.
func (s Slot) IsSet() bool {
	return s.set
}

// String implements fmt.Stringer.
func (s Slot) String() string {
	if !s.set {
		return "none"
	}
	return s.handle.String()
}
