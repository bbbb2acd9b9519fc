package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rook-computer/hsbposter/internal/hsb"
	"github.com/rook-computer/hsbposter/internal/render"
	"github.com/rook-computer/hsbposter/internal/state"
)

// ColorSpec is a raw HSBA color as written in the poster document. Values
// are not range checked; hsb.New normalizes them.
type ColorSpec struct {
	Hue        float64 `yaml:"hue"`
	Saturation float64 `yaml:"saturation"`
	Brightness float64 `yaml:"brightness"`
	Alpha      float64 `yaml:"alpha"`
}

func (c ColorSpec) Color() hsb.Color {
	return hsb.New(c.Hue, c.Saturation, c.Brightness, c.Alpha)
}

// SpecOf is the inverse of ColorSpec.Color for already normalized colors.
func SpecOf(c hsb.Color) ColorSpec {
	return ColorSpec{Hue: c.Hue(), Saturation: c.Saturation(), Brightness: c.Brightness(), Alpha: c.Alpha()}
}

type CanvasSpec struct {
	Width  int `yaml:"width" validate:"min=64,max=8192"`
	Height int `yaml:"height" validate:"min=64,max=8192"`
}

type GridSpec struct {
	Rows    int     `yaml:"rows" validate:"min=1,max=64"`
	Cols    int     `yaml:"cols" validate:"min=1,max=64"`
	HueStep float64 `yaml:"hue_step" validate:"min=0,max=360"`
	Shade   float64 `yaml:"shade" validate:"min=0,max=100"`
}

// Poster is the YAML poster document.
type Poster struct {
	Title      string     `yaml:"title" validate:"max=120"`
	Subtitle   string     `yaml:"subtitle" validate:"max=200"`
	Canvas     CanvasSpec `yaml:"canvas"`
	Grid       GridSpec   `yaml:"grid"`
	Base       ColorSpec  `yaml:"base"`
	Background ColorSpec  `yaml:"background"`
	Foreground ColorSpec  `yaml:"foreground"`
	QR         string     `yaml:"qr" validate:"omitempty,url"`
}

// Default returns the built-in poster.
func Default() *Poster {
	return &Poster{
		Title:      "Hue / Saturation / Brightness",
		Subtitle:   "every cell turns the hue a little further",
		Canvas:     CanvasSpec{Width: render.CanvasWidth, Height: render.CanvasHeight},
		Grid:       GridSpec{Rows: 4, Cols: 8, HueStep: 11.25, Shade: 55},
		Base:       ColorSpec{Hue: 200, Saturation: 75, Brightness: 95, Alpha: 100},
		Background: SpecOf(render.Background),
		Foreground: SpecOf(render.Foreground),
	}
}

// ValidationError lists every poster field that failed validation, named
// by its yaml path.
type ValidationError struct {
	Fields []string
	err    error
}

func (e *ValidationError) Error() string {
	return "invalid poster: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return e.err }

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				return strings.ToLower(field.Name)
			}
			return name
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks p against its field constraints.
func (p *Poster) Validate() error {
	err := validatorInstance().Struct(p)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fields = append(fields, fmt.Sprintf("%s failed validation for tag '%s'", path, fe.Tag()))
	}
	return &ValidationError{Fields: fields, err: err}
}

// Parse decodes a poster document over the defaults and validates it.
func Parse(data []byte) (*Poster, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode poster: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and parses the poster document at path.
func Load(path string) (*Poster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read poster %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Params converts the document into the normalized store form.
func (p *Poster) Params() state.Params {
	return state.Params{
		Title:      p.Title,
		Subtitle:   p.Subtitle,
		Base:       p.Base.Color(),
		Background: p.Background.Color(),
		Foreground: p.Foreground.Color(),
		Rows:       p.Grid.Rows,
		Cols:       p.Grid.Cols,
		HueStep:    p.Grid.HueStep,
		Shade:      p.Grid.Shade,
		QRPayload:  p.QR,
	}
}
