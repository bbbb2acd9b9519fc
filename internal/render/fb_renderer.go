package render

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"

	"github.com/rook-computer/hsbposter/internal/state"
)

// FBRenderer renders to the Linux framebuffer using an offscreen logical canvas.
type FBRenderer struct {
	Device string
	FPS    int
	Width  int
	Height int
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	fbDev        *fb.Device
	canvas       *Canvas
	running      atomic.Bool
	current      Screen
	lastRevision uint64
	drawn        bool
}

var _ Renderer = (*FBRenderer)(nil)

func NewFBRenderer() *FBRenderer {
	return &FBRenderer{Device: "/dev/fb0", FPS: 30, Width: CanvasWidth, Height: CanvasHeight}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	}

	r.canvas = NewCanvas(r.Width, r.Height)
	r.canvas.Logger = r.Logger
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// SetScreen sets the current logical screen to be drawn.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.current = screen
	r.drawn = false
}

// RedrawWithState draws the current screen with snap and pushes it to the device.
func (r *FBRenderer) RedrawWithState(snap state.State) {
	if !r.running.Load() || r.current == nil || r.fbDev == nil {
		return
	}
	r.canvas.Fill(Background)
	r.current.Draw(r.canvas, snap)
	_ = blitToFB(r.fbDev, r.canvas.Image())
	r.lastRevision = snap.Revision
	r.drawn = true
	if r.Logger != nil {
		r.Logger.Infof("fb", "redraw done, revision=%d phase=%s", snap.Revision, snap.Phase)
	}
}

// RunLoop polls the store at FPS and redraws whenever the poster revision
// changes, until the context is done.
func (r *FBRenderer) RunLoop(ctx context.Context, store *state.Store) {
	fps := r.FPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := store.Snapshot()
			if !r.drawn || snap.Revision != r.lastRevision {
				r.RedrawWithState(snap)
			}
			if r.Logger != nil && time.Since(lastLog) > 10*time.Second {
				r.Logger.Infof("fb", "heartbeat, revision=%d", snap.Revision)
				lastLog = time.Now()
			}
		}
	}
}

// pixelSetter is the part of *fb.Device that blitting needs.
type pixelSetter interface {
	Bounds() image.Rectangle
	Set(x, y int, c color.Color)
}

// blitToFB copies canvas to dev via nearest-neighbor scaling.
func blitToFB(dev pixelSetter, canvas *image.RGBA) error {
	if dev == nil || canvas == nil {
		return nil
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	src := canvas.Bounds()
	if fbWidth <= 0 || fbHeight <= 0 || src.Empty() {
		return nil
	}
	for y := 0; y < fbHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
	return nil
}
