package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hsbposter/internal/hsb"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
)

type baseScreen struct{}

func (baseScreen) Start(ctx context.Context) error { return nil }
func (baseScreen) Stop() error                     { return nil }
func (baseScreen) Draw(r render.Drawer, s state.State) {
	r.Fill(s.Poster.Base)
}

func newTestDeps() Deps {
	store := state.NewStore(state.Params{
		Title:      "preview",
		Base:       hsb.New(0, 100, 100, 100),
		Background: hsb.New(0, 0, 100, 100),
		Foreground: hsb.New(0, 0, 0, 100),
		Rows:       2,
		Cols:       2,
		HueStep:    90,
		Shade:      50,
		QRPayload:  "https://example.com",
	})
	return Deps{Store: store, Screen: baseScreen{}, Width: 32, Height: 16}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestColorEndpoint(t *testing.T) {
	t.Parallel()

	mux := NewDefaultMux(newTestDeps())

	tests := []struct {
		name  string
		query string
		want  [4]float64
		hex   string
	}{
		{"wraps and clamps", "h=400&s=-5&b=150&a=50", [4]float64{40, 0, 50, 50}, "#808080"},
		{"negative hue is not wrapped", "h=-10&s=0&b=0&a=100", [4]float64{0, 0, 0, 100}, "#000000"},
		{"defaults", "", [4]float64{0, 0, 0, 100}, "#000000"},
		{"pure red", "h=0&s=100&b=100", [4]float64{0, 100, 100, 100}, "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, mux, http.MethodGet, "/api/v1/color?"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			got := decode[colorResponse](t, rec)
			assert.InDelta(t, tt.want[0], got.Hue, 1e-9)
			assert.InDelta(t, tt.want[1], got.Saturation, 1e-9)
			assert.InDelta(t, tt.want[2], got.Brightness, 1e-9)
			assert.InDelta(t, tt.want[3], got.Alpha, 1e-9)
			assert.InDelta(t, tt.want[0]/360, got.Fractions.Hue, 1e-9)
			assert.InDelta(t, tt.want[3]/100, got.Fractions.Alpha, 1e-9)
			assert.Equal(t, tt.hex, got.Hex)
		})
	}

	t.Run("rejects non numbers", func(t *testing.T) {
		t.Parallel()
		rec := do(t, mux, http.MethodGet, "/api/v1/color?s=lots", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decode[apiError](t, rec).Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		rec := do(t, mux, http.MethodPost, "/api/v1/color", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestPosterEndpoints(t *testing.T) {
	t.Parallel()

	deps := newTestDeps()
	mux := NewDefaultMux(deps)

	rec := do(t, mux, http.MethodGet, "/api/v1/poster", "")
	require.Equal(t, http.StatusOK, rec.Code)
	poster := decode[posterResponse](t, rec)
	assert.Equal(t, "preview", poster.Title)
	assert.Equal(t, "#ff0000", poster.Base.Hex)
	assert.Equal(t, uint64(0), poster.Revision)
	assert.Equal(t, "booting", poster.Phase)

	rec = do(t, mux, http.MethodPut, "/api/v1/poster/base", `{"hue": 480, "saturation": 100, "brightness": 100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	update := decode[baseUpdateResponse](t, rec)
	assert.Equal(t, uint64(1), update.Revision)
	assert.InDelta(t, 120.0, update.Base.Hue, 1e-9)
	assert.Equal(t, 100.0, update.Base.Alpha, "alpha defaults to opaque")
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, update.Base.RGBA)

	assert.InDelta(t, 120.0, deps.Store.Snapshot().Poster.Base.Hue(), 1e-9)

	rec = do(t, mux, http.MethodPut, "/api/v1/poster/base", "{\"hue\": 30}\n")
	require.Equal(t, http.StatusOK, rec.Code, "trailing whitespace is fine")
	assert.Equal(t, uint64(2), decode[baseUpdateResponse](t, rec).Revision)

	for _, body := range []string{"", "{", `{"hue": "red"}`, `{"hex": "#fff"}`, `{"hue":1} trailing`, `{"hue":1}{"hue":2}`, `{"hue":1} }`} {
		rec = do(t, mux, http.MethodPut, "/api/v1/poster/base", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	assert.Equal(t, uint64(2), deps.Store.Snapshot().Revision)
}

func TestPosterPNG(t *testing.T) {
	t.Parallel()

	deps := newTestDeps()
	mux := NewDefaultMux(deps)

	rec := do(t, mux, http.MethodGet, "/poster.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0}, []uint32{r, g, b})

	rec = do(t, mux, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/poster.png", rec.Header().Get("Location"))
}

func TestMissingDeps(t *testing.T) {
	t.Parallel()

	mux := NewDefaultMux(Deps{})
	for _, target := range []string{"/api/v1/poster", "/poster.png"} {
		rec := do(t, mux, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotImplemented, rec.Code, target)
	}
	rec := do(t, mux, http.MethodGet, "/api/v1/color?h=10", "")
	assert.Equal(t, http.StatusOK, rec.Code, "color endpoint needs no store")
}

func TestDevCORS(t *testing.T) {
	t.Parallel()

	h := WithDevCORS(NewDefaultMux(newTestDeps()))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/poster/base", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/color", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServerLifecycle(t *testing.T) {
	t.Parallel()

	srv := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"}, newTestDeps())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.NoError(t, srv.Start(ctx), "second start is a no-op")

	addr := srv.BoundAddr()
	require.NotEmpty(t, addr)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/v1/color?h=720", addr))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
	assert.Error(t, srv.Start(ctx))
}

func TestDefaultServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvDevMode, "")
	cfg, err := DefaultServerConfigFromEnv(":9000")
	require.NoError(t, err)
	assert.Equal(t, ServerConfig{ListenAddr: ":9000"}, cfg)

	t.Setenv(EnvListenAddr, "127.0.0.1:7000")
	t.Setenv(EnvDevMode, "true")
	cfg, err = DefaultServerConfigFromEnv(":9000")
	require.NoError(t, err)
	assert.Equal(t, ServerConfig{ListenAddr: "127.0.0.1:7000", DevMode: true}, cfg)

	t.Setenv(EnvDevMode, "sometimes")
	_, err = DefaultServerConfigFromEnv(":9000")
	assert.Error(t, err)

	t.Setenv(EnvDevMode, "")
	t.Setenv(EnvListenAddr, "8080")
	_, err = DefaultServerConfigFromEnv(":9000")
	assert.ErrorContains(t, err, EnvListenAddr)
}
