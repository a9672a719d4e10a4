// Package render rasterizes a canvas to an image using the gg software
// renderer. It only reads the Builder's render accessors.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas"
)

// Theme holds the colors used for a snapshot.
type Theme struct {
	Background gg.RGBA
	Node       gg.RGBA
	Border     gg.RGBA
	Port       gg.RGBA
	Edge       gg.RGBA
	Selected   gg.RGBA
	Pending    gg.RGBA
}

// DefaultTheme returns the stock colors.
func DefaultTheme() Theme {
	return Theme{
		Background: gg.RGB(0.12, 0.12, 0.14),
		Node:       gg.RGB(0.85, 0.88, 0.95),
		Border:     gg.RGB(0.35, 0.38, 0.45),
		Port:       gg.RGB(0.95, 0.65, 0.2),
		Edge:       gg.RGB(0.6, 0.8, 1),
		Selected:   gg.RGB(0.3, 0.9, 0.4),
		Pending:    gg.RGB(1, 1, 1),
	}
}

// Renderer draws canvases of a fixed size.
type Renderer struct {
	width, height int
	theme         Theme
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the colors.
func WithTheme(t Theme) Option {
	return func(r *Renderer) {
		r.theme = t
	}
}

// New creates a renderer producing width x height images.
//
// Panics if either dimension is not positive.
func New(width, height int, opts ...Option) *Renderer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("render: invalid size %dx%d", width, height))
	}
	r := &Renderer{width: width, height: height, theme: DefaultTheme()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Image draws b and returns the result.
func (r *Renderer) Image(b *tensorcanvas.Builder) (image.Image, error) {
	dc, err := r.draw(b)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// Snapshot draws b and writes it to w as PNG.
func (r *Renderer) Snapshot(w io.Writer, b *tensorcanvas.Builder) error {
	dc, err := r.draw(b)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// draw paints edges first so node bodies cover their ends, then bodies
// and ports, then the in-progress drag and finally the selected port.
func (r *Renderer) draw(b *tensorcanvas.Builder) (*gg.Context, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.ClearWithColor(r.theme.Background)

	var errs []error
	for _, e := range b.Edges() {
		from := b.Node(e.From.Node).OutputAnchor(e.From.Port)
		to := b.Node(e.To.Node).InputAnchor(e.To.Port)
		errs = append(errs, r.edge(dc, from, to, r.theme.Edge))
	}

	radius := b.Layout().PortRadius
	for _, n := range b.Nodes() {
		body := n.Rect()
		dc.DrawRoundedRectangle(body.Min.X, body.Min.Y, body.Width(), body.Height(), 4)
		dc.SetColor(r.theme.Node.Color())
		errs = append(errs, dc.FillPreserve())
		dc.SetColor(r.theme.Border.Color())
		dc.SetLineWidth(1.5)
		errs = append(errs, dc.Stroke())

		for i := range n.Inputs() {
			errs = append(errs, r.port(dc, n.InputAnchor(i), radius, r.theme.Port))
		}
		for i := range n.Outputs() {
			errs = append(errs, r.port(dc, n.OutputAnchor(i), radius, r.theme.Port))
		}
	}

	if h, action, ok := b.Latched(); ok {
		n := b.Node(h)
		start := n.InputAnchor(action.Index)
		if action.Kind == tensorcanvas.DragOutput {
			start = n.OutputAnchor(action.Index)
		}
		errs = append(errs, r.edge(dc, start, b.Cursor(), r.theme.Pending))
	}

	if sel, ok := b.Selected(); ok {
		n := b.Node(sel.Port.Node)
		anchor := n.InputAnchor(sel.Port.Port)
		if sel.Direction == tensorcanvas.DirOutput {
			anchor = n.OutputAnchor(sel.Port.Port)
		}
		errs = append(errs, r.port(dc, anchor, radius, r.theme.Selected))
	}

	if err := errors.Join(errs...); err != nil {
		dc.Close()
		return nil, fmt.Errorf("draw canvas: %w", err)
	}
	return dc, nil
}

// edge draws a horizontal-tangent cubic from an output to an input.
func (r *Renderer) edge(dc *gg.Context, from, to gg.Point, col gg.RGBA) error {
	dx := math.Max(math.Abs(to.X-from.X)/2, 40)
	dc.MoveTo(from.X, from.Y)
	dc.CubicTo(from.X+dx, from.Y, to.X-dx, to.Y, to.X, to.Y)
	dc.SetColor(col.Color())
	dc.SetLineWidth(2)
	return dc.Stroke()
}

func (r *Renderer) port(dc *gg.Context, at gg.Point, radius float64, col gg.RGBA) error {
	dc.DrawCircle(at.X, at.Y, radius)
	dc.SetColor(col.Color())
	return dc.Fill()
}
