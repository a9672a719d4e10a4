package tensorcanvas

import (
	"slices"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/layout"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/varstore"
)

// NodeHandle identifies a node within its Builder. Handles are issued in
// placement order and stay valid for the Builder's lifetime.
type NodeHandle int

// Node is a placed operation.
//
// Port counts equal the operation arity and never change. Outputs are
// allocated at placement; inputs start empty and are filled by connections.
type Node struct {
	pos     gg.Point
	kind    op.Kind
	inputs  []varstore.Slot
	outputs []varstore.Handle
	action  PortAction
	lay     layout.Layout
}

// Position returns the top-left corner of the node body.
func (n *Node) Position() gg.Point { return n.pos }

// Kind returns the operation kind.
func (n *Node) Kind() op.Kind { return n.kind }

// Inputs returns a copy of the input slots.
func (n *Node) Inputs() []varstore.Slot { return slices.Clone(n.inputs) }

// Outputs returns a copy of the output handles.
func (n *Node) Outputs() []varstore.Handle { return slices.Clone(n.outputs) }

// Action returns the action recorded by the last button event.
func (n *Node) Action() PortAction { return n.action }

// Rect returns the node body.
func (n *Node) Rect() gg.Rect { return n.lay.Rect(n.pos) }

// InputAnchor returns the centre of input port i.
func (n *Node) InputAnchor(i int) gg.Point {
	return n.lay.InputAnchor(n.Rect(), i, len(n.inputs))
}

// OutputAnchor returns the centre of output port i.
func (n *Node) OutputAnchor(i int) gg.Point {
	return n.lay.OutputAnchor(n.Rect(), i, len(n.outputs))
}

// handle updates the node's action for a button event and returns it.
//
// A press latches the first port under the pointer as a drag, inputs
// before outputs. A release records the port under the pointer as a drop.
// Anything else, including any secondary-button event, clears the action.
func (n *Node) handle(ev Event) PortAction {
	n.action = PortAction{}
	if ev.Button != ButtonPrimary {
		return n.action
	}

	var onInput, onOutput ActionKind
	switch ev.Kind {
	case EventPress:
		onInput, onOutput = DragInput, DragOutput
	case EventRelease:
		onInput, onOutput = DropInput, DropOutput
	default:
		return n.action
	}

	body := n.Rect()
	if i, ok := n.lay.FirstInput(body, len(n.inputs), ev.Pos); ok {
		n.action = PortAction{Kind: onInput, Index: i}
	} else if i, ok := n.lay.FirstOutput(body, len(n.outputs), ev.Pos); ok {
		n.action = PortAction{Kind: onOutput, Index: i}
	}
	return n.action
}
