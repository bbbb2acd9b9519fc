package screens

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hsbposter/internal/hsb"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
)

type triangle struct {
	a, b, c image.Point
	fill    color.Color
}

type recordingDrawer struct {
	width, height int
	fills         []color.Color
	triangles     []triangle
	texts         []string
	images        []image.Rectangle
}

func (d *recordingDrawer) Size() (int, int)     { return d.width, d.height }
func (d *recordingDrawer) Fill(c color.Color)   { d.fills = append(d.fills, c) }
func (d *recordingDrawer) FillTriangle(a, b, c image.Point, fill color.Color) {
	d.triangles = append(d.triangles, triangle{a, b, c, fill})
}
func (d *recordingDrawer) MeasureText(text string, style render.TextStyle) render.TextMetrics {
	return render.TextMetrics{Width: len(text) * style.Size / 2, Height: style.Size, Ascent: style.Size, LineHeight: style.Size}
}
func (d *recordingDrawer) DrawText(text string, x, y int, style render.TextStyle) render.TextMetrics {
	d.texts = append(d.texts, text)
	return d.MeasureText(text, style)
}
func (d *recordingDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode render.ScaleMode) {
	d.images = append(d.images, rect)
}

func testParams() state.Params {
	return state.Params{
		Title:      "Colors",
		Subtitle:   "hue, saturation, brightness",
		Base:       hsb.New(350, 80, 90, 100),
		Background: hsb.New(0, 0, 100, 100),
		Foreground: hsb.New(0, 0, 0, 100),
		Rows:       3,
		Cols:       4,
		HueStep:    20,
		Shade:      50,
		QRPayload:  "https://example.com",
	}
}

func TestCellColors(t *testing.T) {
	t.Parallel()

	p := testParams()
	upper, lower := CellColors(p, 0)
	assert.Equal(t, p.Base, upper)
	assert.InDelta(t, 45.0, lower.Brightness(), 1e-9)

	upper, _ = CellColors(p, 2)
	assert.InDelta(t, 30.0, upper.Hue(), 1e-9, "350 + 2*20 wraps past 360")
}

func TestPosterScreenDraw(t *testing.T) {
	t.Parallel()

	p := testParams()
	drawer := &recordingDrawer{width: 1920, height: 1080}
	screen := NewPosterScreen(nil)
	screen.Draw(drawer, state.State{Poster: p})

	require.Len(t, drawer.fills, 1)
	assert.Equal(t, p.Background, drawer.fills[0])
	require.Len(t, drawer.triangles, p.Rows*p.Cols*2)
	assert.Equal(t, []string{"Colors", "hue, saturation, brightness", Caption(p.Base)}, drawer.texts)
	require.Len(t, drawer.images, 1)
	assert.Equal(t, drawer.images[0].Dx(), drawer.images[0].Dy(), "qr code area is square")

	// Each cell is split along its anti-diagonal: both triangles share it.
	first, second := drawer.triangles[0], drawer.triangles[1]
	assert.Equal(t, first.b, second.a)
	assert.Equal(t, first.c, second.c)
	for _, tri := range drawer.triangles {
		for _, pt := range []image.Point{tri.a, tri.b, tri.c} {
			assert.True(t, pt.In(image.Rect(0, 0, 1921, 1081)), "point %v off canvas", pt)
		}
	}
}

func TestPosterScreenOmitsOptionalParts(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.Subtitle = ""
	p.QRPayload = ""
	drawer := &recordingDrawer{width: 800, height: 600}
	NewPosterScreen(nil).Draw(drawer, state.State{Poster: p})

	assert.Equal(t, []string{"Colors", Caption(p.Base)}, drawer.texts)
	assert.Empty(t, drawer.images)
}

func TestPosterScreenCachesQRCode(t *testing.T) {
	t.Parallel()

	screen := NewPosterScreen(nil)
	p := testParams()
	first := screen.qrCode(p, 120)
	require.NotNil(t, first)
	assert.Same(t, first, screen.qrCode(p, 120))

	p.QRPayload = "https://example.org"
	assert.NotSame(t, first, screen.qrCode(p, 120))
}

func TestPosterScreenOnCanvas(t *testing.T) {
	t.Parallel()

	p := testParams()
	canvas := render.NewCanvas(640, 360)
	NewPosterScreen(nil).Draw(canvas, state.State{Poster: p})

	img := canvas.Image()
	bg := color.RGBAModel.Convert(p.Background).(color.RGBA)
	assert.Equal(t, bg, img.RGBAAt(1, 1), "corner keeps the background")

	distinct := map[color.RGBA]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 3 {
		for x := b.Min.X; x < b.Max.X; x += 3 {
			distinct[img.RGBAAt(x, y)] = true
		}
	}
	assert.Greater(t, len(distinct), p.Rows*p.Cols, "every cell adds its own hues")
}

func TestCaption(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "base hsba(0, 100%, 100%, 100%)  #ff0000", Caption(hsb.New(0, 100, 100, 100)))
}
