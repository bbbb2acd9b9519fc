package hsb

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Range widths of the canonical fields.
const (
	HueRange     = 360.0
	PercentRange = 100.0
)

type Field int

const (
	FieldHue Field = iota
	FieldSaturation
	FieldBrightness
	FieldAlpha
)

func (f Field) String() string {
	switch f {
	case FieldHue:
		return "hue"
	case FieldSaturation:
		return "saturation"
	case FieldBrightness:
		return "brightness"
	case FieldAlpha:
		return "alpha"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Width returns the range width used to normalize the field.
func (f Field) Width() float64 {
	if f == FieldHue {
		return HueRange
	}
	return PercentRange
}

// Color is a hue/saturation/brightness/alpha color. Hue lives in [0,360],
// the other fields in [0,100]. Every write goes through Normalize, so a Color
// is never observable out of range. The zero value is transparent black.
type Color struct {
	values    [4]float64
	fractions [4]float64
}

// New builds a Color from raw, possibly out of range, inputs.
func New(hue, saturation, brightness, alpha float64) Color {
	var c Color
	c.Set(FieldHue, hue)
	c.Set(FieldSaturation, saturation)
	c.Set(FieldBrightness, brightness)
	c.Set(FieldAlpha, alpha)
	return c
}

// Normalize maps v into [0,width]. Negative values collapse to 0 rather than
// wrapping; values above width wrap with a modulo. NaN and infinities become 0,
// as does everything when width is not a positive number.
func Normalize(v, width float64) float64 {
	switch {
	case !(width > 0):
		return 0
	case math.IsNaN(v), math.IsInf(v, 0):
		return 0
	case v < 0:
		return 0
	case v > width:
		return math.Mod(v, width)
	default:
		return v
	}
}

// Set normalizes v for field f and stores it along with its fraction.
// Unknown fields are ignored.
func (c *Color) Set(f Field, v float64) {
	if f < FieldHue || f > FieldAlpha {
		return
	}
	n := Normalize(v, f.Width())
	c.values[f] = n
	c.fractions[f] = n / f.Width()
}

func (c *Color) SetHue(v float64)        { c.Set(FieldHue, v) }
func (c *Color) SetSaturation(v float64) { c.Set(FieldSaturation, v) }
func (c *Color) SetBrightness(v float64) { c.Set(FieldBrightness, v) }
func (c *Color) SetAlpha(v float64)      { c.Set(FieldAlpha, v) }

// Get returns the canonical value of f, or 0 for an unknown field.
func (c Color) Get(f Field) float64 {
	if f < FieldHue || f > FieldAlpha {
		return 0
	}
	return c.values[f]
}

// Fraction returns the canonical value of f divided by its range width.
func (c Color) Fraction(f Field) float64 {
	if f < FieldHue || f > FieldAlpha {
		return 0
	}
	return c.fractions[f]
}

func (c Color) Hue() float64        { return c.values[FieldHue] }
func (c Color) Saturation() float64 { return c.values[FieldSaturation] }
func (c Color) Brightness() float64 { return c.values[FieldBrightness] }
func (c Color) Alpha() float64      { return c.values[FieldAlpha] }

func (c Color) HueFraction() float64        { return c.fractions[FieldHue] }
func (c Color) SaturationFraction() float64 { return c.fractions[FieldSaturation] }
func (c Color) BrightnessFraction() float64 { return c.fractions[FieldBrightness] }
func (c Color) AlphaFraction() float64      { return c.fractions[FieldAlpha] }

// Rotate returns a copy with deg added to the hue.
func (c Color) Rotate(deg float64) Color {
	c.SetHue(c.Hue() + deg)
	return c
}

// Shade returns a copy whose brightness is pct percent of the current one.
func (c Color) Shade(pct float64) Color {
	c.SetBrightness(c.Brightness() * Normalize(pct, PercentRange) / PercentRange)
	return c
}

// colorful treats a hue of exactly 360 as out of range, so wrap it here.
func (c Color) toColorful() colorful.Color {
	return colorful.Hsv(math.Mod(c.Hue(), HueRange), c.SaturationFraction(), c.BrightnessFraction())
}

// NRGBA converts to 8-bit non-premultiplied RGBA.
func (c Color) NRGBA() color.NRGBA {
	r, g, b := c.toColorful().Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(c.AlphaFraction() * 255))}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Hex returns the opaque #rrggbb form, ignoring alpha.
func (c Color) Hex() string {
	return c.toColorful().Clamped().Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("hsba(%g, %g%%, %g%%, %g%%)", c.Hue(), c.Saturation(), c.Brightness(), c.Alpha())
}
