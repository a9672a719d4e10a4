package render_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gg"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend/cpu"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertColor(t *testing.T, img image.Image, x, y int, want gg.RGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	exp := want.Color().(color.NRGBA)
	assert.InDelta(t, exp.R, got.R, 3, "red at %d,%d", x, y)
	assert.InDelta(t, exp.G, got.G, 3, "green at %d,%d", x, y)
	assert.InDelta(t, exp.B, got.B, 3, "blue at %d,%d", x, y)
}

func canvas() *tensorcanvas.Builder {
	b := tensorcanvas.New(cpu.New(), tensorcanvas.WithLogger(nil))
	v := b.Place(op.Variable, gg.Pt(20, 20))
	r := b.Place(op.ReLU, gg.Pt(220, 20))
	b.Dispatch(tensorcanvas.Press(b.Node(v).OutputAnchor(0)))
	b.Dispatch(tensorcanvas.Release(b.Node(r).InputAnchor(0)))
	return b
}

func TestImage(t *testing.T) {
	theme := render.DefaultTheme()
	img, err := render.New(400, 200).Image(canvas())
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 400, 200), img.Bounds())
	assertColor(t, img, 5, 190, theme.Background)
	assertColor(t, img, 68, 44, theme.Node)  // body centre of the Variable
	assertColor(t, img, 116, 44, theme.Port) // its output port
	assertColor(t, img, 168, 44, theme.Edge) // midway along the connection
}

func TestImage_SelectionAndPendingDrag(t *testing.T) {
	theme := render.DefaultTheme()
	b := canvas()

	// Click the ReLU output to select it, then start a drag from it.
	out := b.Node(1).OutputAnchor(0)
	b.Dispatch(tensorcanvas.Press(out))
	b.Dispatch(tensorcanvas.Release(out))
	b.Dispatch(tensorcanvas.Press(out))
	b.Dispatch(tensorcanvas.Move(gg.Pt(390, 44)))

	img, err := render.New(400, 200).Image(b)
	require.NoError(t, err)

	assertColor(t, img, int(out.X), int(out.Y), theme.Selected)
	assertColor(t, img, 350, 44, theme.Pending)
}

func TestSnapshot_WritesPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.New(320, 240).Snapshot(&buf, canvas()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestWithTheme(t *testing.T) {
	theme := render.DefaultTheme()
	theme.Background = gg.RGB(1, 0, 0)

	img, err := render.New(50, 50, render.WithTheme(theme)).Image(tensorcanvas.New(cpu.New()))
	require.NoError(t, err)
	assertColor(t, img, 25, 25, theme.Background)
}

func TestNew_InvalidSize(t *testing.T) {
	assert.PanicsWithValue(t, "render: invalid size 0x10", func() { render.New(0, 10) })
}
