package web

import (
	"net/http"

	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
)

// Deps are what the preview handlers read from and write to.
type Deps struct {
	Store  *state.Store
	Screen render.Screen
	Width  int
	Height int
	Logger logger
}

func (d Deps) withDefaults() Deps {
	if d.Width <= 0 {
		d.Width = render.CanvasWidth
	}
	if d.Height <= 0 {
		d.Height = render.CanvasHeight
	}
	return d
}

// NewDefaultMux builds the preview routes:
// - /poster.png for the rendered poster
// - /api/v1/* for the color and poster API
func NewDefaultMux(deps Deps) *http.ServeMux {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.RedirectHandler("/poster.png", http.StatusFound))
	mux.HandleFunc("GET /poster.png", func(w http.ResponseWriter, r *http.Request) { handlePosterPNG(w, r, deps) })
	mux.HandleFunc("GET /api/v1/color", handleColor)
	mux.HandleFunc("GET /api/v1/poster", func(w http.ResponseWriter, r *http.Request) { handlePoster(w, r, deps) })
	mux.HandleFunc("PUT /api/v1/poster/base", func(w http.ResponseWriter, r *http.Request) { handlePutBase(w, r, deps) })
	return mux
}
