package tensorcanvas

import (
	"github.com/gogpu/gg"
)

// EventKind distinguishes pointer events.
type EventKind uint8

// Pointer event kinds.
const (
	EventMove EventKind = iota
	EventPress
	EventRelease
)

// Button identifies a pointer button.
type Button uint8

// Pointer buttons.
const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Event is a pointer event in canvas coordinates.
type Event struct {
	Kind   EventKind
	Pos    gg.Point
	Button Button
}

// Move returns a pointer-move event.
func Move(pos gg.Point) Event {
	return Event{Kind: EventMove, Pos: pos}
}

// Press returns a primary-button press.
func Press(pos gg.Point) Event {
	return Event{Kind: EventPress, Pos: pos}
}

// Release returns a primary-button release.
func Release(pos gg.Point) Event {
	return Event{Kind: EventRelease, Pos: pos}
}
