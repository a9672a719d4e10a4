package tensorcanvas

import (
	"context"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/observability"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
)

// OutcomeKind is the result category of one dispatch cycle.
type OutcomeKind uint8

// Dispatch outcomes.
const (
	OutcomeNone OutcomeKind = iota
	OutcomeConnected
	OutcomeSelected
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConnected:
		return "connected"
	case OutcomeSelected:
		return "selected"
	default:
		return "none"
	}
}

// Direction tells input ports from output ports.
type Direction uint8

// Port directions.
const (
	DirInput Direction = iota
	DirOutput
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	if d == DirOutput {
		return "output"
	}
	return "input"
}

// Selection is a port chosen for inspection.
type Selection struct {
	Port      PortRef
	Direction Direction
	Variable  varstore.Handle

	// Backend is the compiled handle of Variable. It is only meaningful
	// when Bound is true; a canvas that was never compiled has none.
	Backend backend.Handle
	Bound   bool
}

// Outcome is what a dispatch cycle produced. At most one of Connection
// and Selection is meaningful, as indicated by Kind.
type Outcome struct {
	Kind       OutcomeKind
	Connection Edge
	Selection  Selection
}

// Dispatch feeds one pointer event through the canvas.
//
// Move events only update the cursor. A button event is handed to every
// node in placement order; the first node reporting an action pairs it
// with the action latched by the previous cycle. Drag actions are latched
// for the next cycle; drops and empty cycles clear the latch.
func (b *Builder) Dispatch(ev Event) Outcome {
	b.cursor = ev.Pos
	if ev.Kind == EventMove {
		return Outcome{}
	}

	var current latched
	found := false
	for i, n := range b.nodes {
		a := n.handle(ev)
		if !found && !a.IsZero() {
			current = latched{node: NodeHandle(i), action: a}
			found = true
		}
	}

	out := b.apply(pair(b.latch, current))

	if !found || current.action.IsDrop() {
		b.latch = latched{}
	} else {
		b.latch = current
	}

	b.cfg.metrics.RecordOutcome(context.Background(), out.Kind.String())
	return out
}

// Latched returns the node and action carried into the next cycle.
func (b *Builder) Latched() (NodeHandle, PortAction, bool) {
	return b.latch.node, b.latch.action, !b.latch.action.IsZero()
}

// Selected returns the most recent selection.
func (b *Builder) Selected() (Selection, bool) {
	if b.selected == nil {
		return Selection{}, false
	}
	return *b.selected, true
}

// plan is the decision pair makes for a cycle.
type plan struct {
	kind OutcomeKind
	// For connections, from is the sending output and to the receiving
	// input. For selections, to is the selected port.
	from, to  PortRef
	direction Direction
}

// pair decides what the previous and current actions mean together.
// It reads nothing but its arguments.
func pair(prev, cur latched) plan {
	switch {
	case prev.action.Kind == DragOutput && cur.action.Kind == DropInput:
		return connect(
			PortRef{Node: prev.node, Port: prev.action.Index},
			PortRef{Node: cur.node, Port: cur.action.Index},
		)
	case prev.action.Kind == DragInput && cur.action.Kind == DropOutput:
		return connect(
			PortRef{Node: cur.node, Port: cur.action.Index},
			PortRef{Node: prev.node, Port: prev.action.Index},
		)
	case prev.action.Kind == DragOutput && cur.action.Kind == DropOutput:
		return plan{kind: OutcomeSelected, to: PortRef{Node: cur.node, Port: cur.action.Index}, direction: DirOutput}
	case prev.action.Kind == DragInput && cur.action.Kind == DropInput:
		return plan{kind: OutcomeSelected, to: PortRef{Node: cur.node, Port: cur.action.Index}, direction: DirInput}
	default:
		return plan{}
	}
}

// connect plans a connection. A node feeding itself could never build,
// so that gesture is dropped.
func connect(from, to PortRef) plan {
	if from.Node == to.Node {
		return plan{}
	}
	return plan{kind: OutcomeConnected, from: from, to: to}
}

func (b *Builder) apply(p plan) Outcome {
	switch p.kind {
	case OutcomeConnected:
		sender, receiver := b.nodes[p.from.Node], b.nodes[p.to.Node]
		h := sender.outputs[p.from.Port]
		receiver.inputs[p.to.Port] = varstore.Some(h)
		observability.LogConnect(b.cfg.logger, int(p.from.Node), p.from.Port, int(p.to.Node), p.to.Port, h.String())
		return Outcome{Kind: OutcomeConnected, Connection: Edge{From: p.from, To: p.to, Variable: h}}

	case OutcomeSelected:
		n := b.nodes[p.to.Node]
		var h varstore.Handle
		if p.direction == DirOutput {
			h = n.outputs[p.to.Port]
		} else {
			var ok bool
			if h, ok = n.inputs[p.to.Port].Get(); !ok {
				return Outcome{}
			}
		}
		sel := Selection{Port: p.to, Direction: p.direction, Variable: h}
		sel.Backend, sel.Bound = b.store.Get(h).Backend()
		b.selected = &sel
		observability.LogSelect(b.cfg.logger, int(p.to.Node), p.to.Port, p.direction.String(), h.String())
		return Outcome{Kind: OutcomeSelected, Selection: sel}

	default:
		return Outcome{}
	}
}
