package screens

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rook-computer/hsbposter/internal/hsb"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/render/layout"
	"github.com/rook-computer/hsbposter/internal/state"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// PosterScreen draws the poster described by the state snapshot: a title
// header, a grid of two-triangle cells stepping around the hue circle, and a
// footer with the base color caption and an optional QR code.
type PosterScreen struct {
	Logger Logger

	mu      sync.Mutex
	qrKey   string
	qrImage image.Image
}

func NewPosterScreen(logger Logger) *PosterScreen {
	return &PosterScreen{Logger: logger}
}

func (s *PosterScreen) Start(ctx context.Context) error { return nil }
func (s *PosterScreen) Stop() error                     { return nil }

// CellColors returns the upper and lower triangle colors of grid cell index.
func CellColors(p state.Params, index int) (upper, lower hsb.Color) {
	upper = p.Base.Rotate(float64(index) * p.HueStep)
	return upper, upper.Shade(p.Shade)
}

// Caption is the footer line describing the base color.
func Caption(c hsb.Color) string {
	return fmt.Sprintf("base %s  %s", c, c.Hex())
}

func (s *PosterScreen) Draw(r render.Drawer, st state.State) {
	p := st.Poster
	width, height := r.Size()
	r.Fill(p.Background)

	margin := min(width, height) / 20
	area := layout.Inset(image.Rect(0, 0, width, height), margin)
	header, rest := layout.SplitHorizontal(area, area.Dy()/6)
	body, footer := layout.SplitHorizontal(rest, rest.Dy()*5/6)

	centerX := header.Min.X + header.Dx()/2
	titleStyle := render.TextStyle{Color: p.Foreground, Size: max(12, header.Dy()/2), Align: render.TextAlignCenter}
	titleMetrics := r.DrawText(p.Title, centerX, header.Min.Y, titleStyle)
	if p.Subtitle != "" {
		subtitleStyle := render.TextStyle{Color: p.Foreground, Size: max(10, header.Dy()/4), Align: render.TextAlignCenter}
		r.DrawText(p.Subtitle, centerX, header.Min.Y+titleMetrics.LineHeight, subtitleStyle)
	}

	for i, cell := range layout.Grid(layout.Inset(body, margin/4), p.Cols, p.Rows) {
		upper, lower := CellColors(p, i)
		topRight := image.Pt(cell.Max.X, cell.Min.Y)
		bottomLeft := image.Pt(cell.Min.X, cell.Max.Y)
		r.FillTriangle(cell.Min, topRight, bottomLeft, upper)
		r.FillTriangle(topRight, cell.Max, bottomLeft, lower)
	}

	footer = layout.Inset(footer, margin/4)
	captionArea, qrArea := layout.SplitVertical(footer, footer.Dx()-footer.Dy())
	captionStyle := render.TextStyle{Color: p.Foreground, Size: max(10, footer.Dy()/4)}
	captionMetrics := r.MeasureText(Caption(p.Base), captionStyle)
	r.DrawText(Caption(p.Base), captionArea.Min.X, captionArea.Min.Y+(captionArea.Dy()-captionMetrics.Height)/2, captionStyle)

	if qr := s.qrCode(p, qrArea.Dy()); qr != nil {
		r.DrawImageInRect(qr, layout.FitSquare(qrArea), render.ScaleModeFit)
	}
}

// qrCode caches the last generated code so redraw loops don't re-encode it.
func (s *PosterScreen) qrCode(p state.Params, sizePx int) image.Image {
	if p.QRPayload == "" || sizePx <= 0 {
		return nil
	}
	key := fmt.Sprintf("%s|%d|%s|%s", p.QRPayload, sizePx, p.Foreground.Hex(), p.Background.Hex())
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.qrKey {
		return s.qrImage
	}
	img, err := render.GenerateQRCodeImage(p.QRPayload, sizePx, p.Foreground.NRGBA(), p.Background.NRGBA())
	if err != nil {
		if s.Logger != nil {
			s.Logger.Errorf("poster", "qr code for %q failed: %v", p.QRPayload, err)
		}
		return nil
	}
	s.qrKey, s.qrImage = key, img
	return img
}
