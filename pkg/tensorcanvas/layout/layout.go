// Package layout places ports on a node body and answers hit tests.
//
// A node body is an axis-aligned rectangle whose top-left corner is the
// node position. Input ports sit on the left edge and output ports on the
// right edge; port i of n is centred at fraction (i+0.5)/n of the edge.
package layout

import (
	"github.com/gogpu/gg"
)

// Layout holds the canvas geometry shared by every node.
type Layout struct {
	// NodeSize is the width (X) and height (Y) of a node body.
	NodeSize gg.Point
	// PortRadius is the hit radius around a port anchor.
	PortRadius float64
}

// Default returns the stock geometry.
func Default() Layout {
	return Layout{
		NodeSize:   gg.Pt(96, 48),
		PortRadius: 6,
	}
}

// Rect returns the body rectangle of a node at pos.
func (l Layout) Rect(pos gg.Point) gg.Rect {
	return gg.Rect{Min: pos, Max: pos.Add(l.NodeSize)}
}

// InputAnchor returns the centre of input port i of n.
func (l Layout) InputAnchor(body gg.Rect, i, n int) gg.Point {
	return gg.Pt(body.Min.X, edgeOffset(body, i, n))
}

// OutputAnchor returns the centre of output port i of n.
func (l Layout) OutputAnchor(body gg.Rect, i, n int) gg.Point {
	return gg.Pt(body.Max.X, edgeOffset(body, i, n))
}

// HitPort reports whether pt is within the port radius of anchor.
func (l Layout) HitPort(anchor, pt gg.Point) bool {
	return anchor.Distance(pt) <= l.PortRadius
}

// HitBody reports whether pt lies inside body.
func (l Layout) HitBody(body gg.Rect, pt gg.Point) bool {
	return body.Contains(pt)
}

// FirstInput returns the first of n input ports hit by pt.
func (l Layout) FirstInput(body gg.Rect, n int, pt gg.Point) (int, bool) {
	for i := 0; i < n; i++ {
		if l.HitPort(l.InputAnchor(body, i, n), pt) {
			return i, true
		}
	}
	return 0, false
}

// FirstOutput returns the first of n output ports hit by pt.
func (l Layout) FirstOutput(body gg.Rect, n int, pt gg.Point) (int, bool) {
	for i := 0; i < n; i++ {
		if l.HitPort(l.OutputAnchor(body, i, n), pt) {
			return i, true
		}
	}
	return 0, false
}

func edgeOffset(body gg.Rect, i, n int) float64 {
	return body.Min.Y + body.Height()*(float64(i)+0.5)/float64(n)
}
