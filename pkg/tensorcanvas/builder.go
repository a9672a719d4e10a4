package tensorcanvas

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/layout"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/observability"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
)

// Builder owns the nodes of a canvas, resolves pointer gestures into
// connections and selections, and compiles the canvas into a backend graph.
//
// Builder is NOT thread-safe. Dispatch, Place, Compile and Run are meant
// to be called from the host's single event loop.
//
// Example:
//
//	b := tensorcanvas.New(cpu.New())
//	w := b.Place(op.Variable, gg.Pt(0, 0))
//	r := b.Place(op.ReLU, gg.Pt(200, 0))
//	b.Dispatch(tensorcanvas.Press(b.Node(w).OutputAnchor(0)))
//	b.Dispatch(tensorcanvas.Release(b.Node(r).InputAnchor(0)))
//	if err := b.Compile(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Builder struct {
	device backend.Device
	cfg    builderConfig
	store  *varstore.Store
	nodes  []*Node

	latch    latched
	cursor   gg.Point
	chosen   op.Kind
	selected *Selection

	// graph is the last successfully compiled backend graph.
	graph backend.Graph
}

// latched is the node action remembered between dispatch cycles.
type latched struct {
	node   NodeHandle
	action PortAction
}

// New creates an empty canvas that compiles onto device.
//
// Panics if device is nil.
func New(device backend.Device, opts ...Option) *Builder {
	if device == nil {
		panic("tensorcanvas: device cannot be nil")
	}
	cfg := defaultBuilderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{
		device: device,
		cfg:    cfg,
		store:  varstore.New(),
	}
}

// Place adds an operation node with its body's top-left corner at pos.
// Output variables are allocated immediately: managed ones with the
// operation's shape, computed ones with a shape inferred at Compile.
//
// Panics if kind is not registered, or if WithShape is applied to an
// operation that infers its shape or given a non-positive shape.
func (b *Builder) Place(kind op.Kind, pos gg.Point, opts ...PlaceOption) NodeHandle {
	d, ok := b.cfg.registry.Lookup(kind)
	if !ok {
		panic(fmt.Sprintf("tensorcanvas: unknown operation kind %s", kind))
	}

	pc := placeConfig{shape: d.Shape}
	for _, opt := range opts {
		opt(&pc)
	}
	if pc.shape != d.Shape {
		if !d.Managed {
			panic(fmt.Sprintf("tensorcanvas: %s output shape is inferred", kind))
		}
		if pc.shape.Rows <= 0 || pc.shape.Cols <= 0 {
			panic(fmt.Sprintf("tensorcanvas: invalid shape %s", pc.shape))
		}
	}

	n := &Node{
		pos:     pos,
		kind:    kind,
		inputs:  make([]varstore.Slot, d.ArityIn),
		outputs: make([]varstore.Handle, d.ArityOut),
		lay:     b.cfg.layout,
	}
	for i := range n.outputs {
		if d.Managed {
			n.outputs[i] = b.store.AddManaged(pc.shape)
		} else {
			n.outputs[i] = b.store.Add(backend.Shape{})
		}
	}

	h := NodeHandle(len(b.nodes))
	b.nodes = append(b.nodes, n)
	observability.LogPlace(b.cfg.logger, int(h), d.Name, pos.X, pos.Y)
	return h
}

// Choose remembers an operation for PlaceAtCursor, the way a palette
// selection waits for the next click on the canvas.
//
// Panics if kind is not registered.
func (b *Builder) Choose(kind op.Kind) {
	b.cfg.registry.MustLookup(kind)
	b.chosen = kind
}

// PlaceAtCursor places the chosen operation at the last pointer position.
// Returns false if nothing has been chosen.
func (b *Builder) PlaceAtCursor(opts ...PlaceOption) (NodeHandle, bool) {
	if b.chosen == 0 {
		return 0, false
	}
	return b.Place(b.chosen, b.cursor, opts...), true
}

// Cursor returns the position of the last dispatched event.
func (b *Builder) Cursor() gg.Point {
	return b.cursor
}

// Node returns the node for h.
//
// Panics if h was not issued by this Builder.
func (b *Builder) Node(h NodeHandle) *Node {
	if h < 0 || int(h) >= len(b.nodes) {
		panic(fmt.Sprintf("tensorcanvas: unknown node %d", h))
	}
	return b.nodes[h]
}

// Nodes returns every node in placement order.
func (b *Builder) Nodes() []*Node {
	out := make([]*Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// Len returns the number of placed nodes.
func (b *Builder) Len() int {
	return len(b.nodes)
}

// Store returns the variable store.
func (b *Builder) Store() *varstore.Store {
	return b.store
}

// Registry returns the operation registry.
func (b *Builder) Registry() *op.Registry {
	return b.cfg.registry
}

// Layout returns the node geometry.
func (b *Builder) Layout() layout.Layout {
	return b.cfg.layout
}

// Device returns the backend device.
func (b *Builder) Device() backend.Device {
	return b.device
}

// PortRef names one port of one node.
type PortRef struct {
	Node NodeHandle
	Port int
}

// Edge is a connection from an output port to an input port.
type Edge struct {
	From     PortRef
	To       PortRef
	Variable varstore.Handle
}

// Edges derives the connections from the nodes' input slots, in receiver
// placement order. The input slot is authoritative; there is no separate
// edge list to keep in sync.
func (b *Builder) Edges() []Edge {
	producers := make(map[varstore.Handle]PortRef)
	for i, n := range b.nodes {
		for o, h := range n.outputs {
			producers[h] = PortRef{Node: NodeHandle(i), Port: o}
		}
	}

	var edges []Edge
	for i, n := range b.nodes {
		for p, slot := range n.inputs {
			h, ok := slot.Get()
			if !ok {
				continue
			}
			from, ok := producers[h]
			if !ok {
				continue
			}
			edges = append(edges, Edge{From: from, To: PortRef{Node: NodeHandle(i), Port: p}, Variable: h})
		}
	}
	return edges
}
