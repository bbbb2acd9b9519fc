package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rook-computer/hsbposter/internal/hsb"
	"github.com/rook-computer/hsbposter/internal/render"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type fractionsResponse struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
	Alpha      float64 `json:"alpha"`
}

type colorResponse struct {
	Hue        float64           `json:"hue"`
	Saturation float64           `json:"saturation"`
	Brightness float64           `json:"brightness"`
	Alpha      float64           `json:"alpha"`
	Fractions  fractionsResponse `json:"fractions"`
	Hex        string            `json:"hex"`
	RGBA       [4]uint8          `json:"rgba"`
}

type colorRequest struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
	Alpha      float64 `json:"alpha"`
}

type posterResponse struct {
	Title      string        `json:"title"`
	Subtitle   string        `json:"subtitle"`
	Base       colorResponse `json:"base"`
	Background colorResponse `json:"background"`
	Foreground colorResponse `json:"foreground"`
	Rows       int           `json:"rows"`
	Cols       int           `json:"cols"`
	HueStep    float64       `json:"hueStep"`
	Shade      float64       `json:"shade"`
	QR         string        `json:"qr,omitempty"`
	Revision   uint64        `json:"revision"`
	Phase      string        `json:"phase"`
}

type baseUpdateResponse struct {
	Revision uint64        `json:"revision"`
	Base     colorResponse `json:"base"`
}

func toColorResponse(c hsb.Color) colorResponse {
	n := c.NRGBA()
	return colorResponse{
		Hue:        c.Hue(),
		Saturation: c.Saturation(),
		Brightness: c.Brightness(),
		Alpha:      c.Alpha(),
		Fractions: fractionsResponse{
			Hue:        c.HueFraction(),
			Saturation: c.SaturationFraction(),
			Brightness: c.BrightnessFraction(),
			Alpha:      c.AlphaFraction(),
		},
		Hex:  c.Hex(),
		RGBA: [4]uint8{n.R, n.G, n.B, n.A},
	}
}

// handleColor normalizes the h, s, b and a query parameters. Missing
// parameters default to 0, except alpha which defaults to 100.
func handleColor(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var values [4]float64
	values[hsb.FieldAlpha] = hsb.PercentRange
	for i, key := range []string{"h", "s", "b", "a"} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "bad_request", "query parameter "+key+" must be a number")
			return
		}
		values[i] = v
	}
	c := hsb.New(values[hsb.FieldHue], values[hsb.FieldSaturation], values[hsb.FieldBrightness], values[hsb.FieldAlpha])
	writeJSON(w, http.StatusOK, toColorResponse(c))
}

func handlePoster(w http.ResponseWriter, r *http.Request, deps Deps) {
	if deps.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "poster store not configured")
		return
	}
	snap := deps.Store.Snapshot()
	p := snap.Poster
	writeJSON(w, http.StatusOK, posterResponse{
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Base:       toColorResponse(p.Base),
		Background: toColorResponse(p.Background),
		Foreground: toColorResponse(p.Foreground),
		Rows:       p.Rows,
		Cols:       p.Cols,
		HueStep:    p.HueStep,
		Shade:      p.Shade,
		QR:         p.QRPayload,
		Revision:   snap.Revision,
		Phase:      snap.Phase.String(),
	})
}

const maxBaseBodyBytes = 4 << 10

func handlePutBase(w http.ResponseWriter, r *http.Request, deps Deps) {
	if deps.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "poster store not configured")
		return
	}

	req := colorRequest{Alpha: hsb.PercentRange}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBaseBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeAPIError(w, http.StatusBadRequest, "bad_request", "request body is empty")
			return
		}
		writeAPIError(w, http.StatusBadRequest, "bad_request", "invalid color: "+err.Error())
		return
	}
	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		writeAPIError(w, http.StatusBadRequest, "bad_request", "request body must hold a single JSON object")
		return
	}

	base := hsb.New(req.Hue, req.Saturation, req.Brightness, req.Alpha)
	revision := deps.Store.UpdateBase(base)
	if deps.Logger != nil {
		deps.Logger.Infof("web", "base color set to %s, revision=%d", base, revision)
	}
	writeJSON(w, http.StatusOK, baseUpdateResponse{Revision: revision, Base: toColorResponse(base)})
}

func handlePosterPNG(w http.ResponseWriter, r *http.Request, deps Deps) {
	if deps.Store == nil || deps.Screen == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "poster rendering not configured")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.RenderPNG(deps.Screen, deps.Store.Snapshot(), deps.Width, deps.Height, w); err != nil {
		// Headers are already out; the client sees a truncated image.
		if deps.Logger != nil {
			deps.Logger.Errorf("web", "poster.png: %v", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
