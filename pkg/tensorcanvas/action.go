package tensorcanvas

import "fmt"

// ActionKind is the kind of port interaction a node reports.
type ActionKind uint8

// Port action kinds. The zero value means no action.
const (
	ActionNone ActionKind = iota
	DragInput
	DragOutput
	DropInput
	DropOutput
)

var actionNames = [...]string{
	ActionNone: "None",
	DragInput:  "DragInput",
	DragOutput: "DragOutput",
	DropInput:  "DropInput",
	DropOutput: "DropOutput",
}

// String implements fmt.Stringer.
func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// PortAction is the port a node's last button event landed on.
type PortAction struct {
	Kind  ActionKind
	Index int
}

// IsZero reports whether there is no action.
func (a PortAction) IsZero() bool {
	return a.Kind == ActionNone
}

// IsDrop reports whether the action ends a gesture. Drops never stay latched.
func (a PortAction) IsDrop() bool {
	return a.Kind == DropInput || a.Kind == DropOutput
}

// String implements fmt.Stringer.
func (a PortAction) String() string {
	if a.IsZero() {
		return "None"
	}
	return fmt.Sprintf("%s(%d)", a.Kind, a.Index)
}
