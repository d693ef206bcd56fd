package image

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor is an 8-bit gamma-encoded sRGB pixel. A is carried along but never compared.
type RGBColor struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// LabColor is a CIE L*a*b* coordinate with L in the nominal 0-100 range.
type LabColor struct {
	L float64
	A float64
	B float64
}

// HighlightColor paints differing pixels and pixels outside the overlap of both images.
// Downstream tooling keys on this exact value.
var HighlightColor = color.RGBA{R: 200, G: 1, B: 1, A: 255}

func (c RGBColor) sameRGB(o RGBColor) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

func (c RGBColor) opaque() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ToLab converts an sRGB pixel to CIE L*a*b* under the D65 reference white.
func ToLab(c RGBColor) LabColor {
	// go-colorful linearizes with the sRGB transfer function, maps through the
	// sRGB/D65 matrix, and returns Lab scaled down by 100.
	l, a, b := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Lab()

	return LabColor{
		L: l * 100,
		A: a * 100,
		B: b * 100,
	}
}
