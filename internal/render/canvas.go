package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/golang/freetype/raster"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/hsbposter/internal/state"
)

// Canvas is an offscreen RGBA surface implementing Drawer.
type Canvas struct {
	img        *image.RGBA
	rasterizer *raster.Rasterizer
	painter    *raster.RGBAPainter

	font  *opentype.Font
	mu    sync.Mutex
	faces map[int]font.Face

	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
}

var _ Drawer = (*Canvas)(nil)

// NewCanvas allocates a width x height canvas. Sizes below one pixel are
// bumped to one.
func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rasterizer := raster.NewRasterizer(width, height)
	rasterizer.UseNonZeroWinding = true
	c := &Canvas{
		img:        img,
		rasterizer: rasterizer,
		painter:    raster.NewRGBAPainter(img),
		faces:      map[int]font.Face{},
	}
	if f, err := opentype.Parse(goregular.TTF); err == nil {
		c.font = f
	}
	return c
}

// Image exposes the backing pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Fill(fill color.Color) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
}

// FillTriangle scan-converts the triangle a-b-c with anti-aliased edges and
// composites it over the canvas.
func (c *Canvas) FillTriangle(a, b, p image.Point, fill color.Color) {
	c.rasterizer.Clear()
	c.rasterizer.Start(fixed.P(a.X, a.Y))
	c.rasterizer.Add1(fixed.P(b.X, b.Y))
	c.rasterizer.Add1(fixed.P(p.X, p.Y))
	c.rasterizer.Add1(fixed.P(a.X, a.Y))
	c.painter.SetColor(fill)
	c.rasterizer.Rasterize(c.painter)
}

func (c *Canvas) face(size int) font.Face {
	if size <= 0 {
		size = DefaultFontSize
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if face, ok := c.faces[size]; ok {
		return face
	}
	var face font.Face = basicfont.Face7x13
	if c.font == nil {
		if c.Logger != nil {
			c.Logger.Errorf("canvas", "no font parsed, using basicfont")
		}
	} else {
		f, err := opentype.NewFace(c.font, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			if c.Logger != nil {
				c.Logger.Errorf("canvas", "font face %dpt failed, using basicfont: %v", size, err)
			}
		} else {
			face = f
		}
	}
	c.faces[size] = face
	return face
}

func (c *Canvas) MeasureText(text string, style TextStyle) TextMetrics {
	face := c.face(style.Size)
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	return TextMetrics{
		Width:      font.MeasureString(face, text).Ceil(),
		Height:     ascent + descent,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: metrics.Height.Ceil(),
	}
}

func (c *Canvas) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	m := c.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= m.Width / 2
	case TextAlignRight:
		x -= m.Width
	}
	fg := style.Color
	if fg == nil {
		fg = Foreground
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(fg),
		Face: c.face(style.Size),
		Dot:  fixed.P(x, y+m.Ascent),
	}
	drawer.DrawString(text)
	return m
}

func (c *Canvas) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	if src.Empty() {
		return
	}
	dst := rect
	switch mode {
	case ScaleModeFit:
		dst = fitRect(src, rect)
	case ScaleModeFill:
		src = cropToAspect(src, rect)
	}
	xdraw.NearestNeighbor.Scale(c.img, dst, img, src, xdraw.Over, nil)
}

// fitRect returns the largest rectangle with src's aspect ratio centered in rect.
func fitRect(src, rect image.Rectangle) image.Rectangle {
	scaleX := float64(rect.Dx()) / float64(src.Dx())
	scaleY := float64(rect.Dy()) / float64(src.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	w := int(float64(src.Dx()) * scale)
	h := int(float64(src.Dy()) * scale)
	minX := rect.Min.X + (rect.Dx()-w)/2
	minY := rect.Min.Y + (rect.Dy()-h)/2
	return image.Rect(minX, minY, minX+w, minY+h)
}

// cropToAspect returns the centered part of src with rect's aspect ratio.
func cropToAspect(src, rect image.Rectangle) image.Rectangle {
	wantRatio := float64(rect.Dx()) / float64(rect.Dy())
	w, h := src.Dx(), src.Dy()
	if float64(w)/float64(h) > wantRatio {
		w = int(float64(h) * wantRatio)
	} else {
		h = int(float64(w) / wantRatio)
	}
	minX := src.Min.X + (src.Dx()-w)/2
	minY := src.Min.Y + (src.Dy()-h)/2
	return image.Rect(minX, minY, minX+w, minY+h)
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := png.Encode(bw, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return bw.Flush()
}

// RenderPNG draws screen with snap onto a fresh canvas and encodes it.
func RenderPNG(screen Screen, snap state.State, width, height int, out io.Writer) error {
	canvas := NewCanvas(width, height)
	canvas.Fill(Background)
	screen.Draw(canvas, snap)
	return canvas.EncodePNG(out)
}
