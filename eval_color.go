package matgraph

import (
	"math"

	"github.com/chewxy/math32"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/geometry/ms3"
)

func (e *Evaluator) evalColor(kind Kind, n *Node, vs visitSet) Value {
	v := e.in(n, vs, "input", "in", "color", "rgb", "hsv")
	if v == nil {
		if c, ok := propColor(n, 3); ok {
			v = c
		} else {
			return nil
		}
	}
	if isTexture(v) {
		return v
	}
	c := toVec3(v, ms3.Vec{})
	var out ms3.Vec
	switch kind {
	case KindDesaturation:
		frac := e.scalarIn(n, vs, "fraction", "Fraction", 1)
		out = mix3(c, splat3(luminance(c)), clamp01(frac))
	case KindRGBToHSV:
		h, s, val := toColorful(c).Hsv()
		out = ms3.Vec{X: float32(h / 360), Y: float32(s), Z: float32(val)}
	case KindHSVToRGB:
		h := c.X - math32.Floor(c.X)
		out = fromColorful(colorful.Hsv(float64(h)*360, float64(clamp01(c.Y)), float64(c.Z)))
	case KindHueShift:
		shift := e.scalarIn(n, vs, "hueshiftpercentage", "HueShiftPercentage", 0)
		h, s, val := toColorful(c).Hsv()
		h = mod360(h + float64(shift)*360)
		out = fromColorful(colorful.Hsv(h, s, val))
	case KindLinearToSRGB:
		// colorful.LinearRgb encodes linear components with the sRGB transfer function.
		out = fromColorful(colorful.LinearRgb(float64(c.X), float64(c.Y), float64(c.Z)))
	case KindSRGBToLinear:
		r, g, b := toColorful(c).LinearRgb()
		out = ms3.Vec{X: float32(r), Y: float32(g), Z: float32(b)}
	default:
		panic("matgraph: no color function for " + kind.String())
	}
	if vec, ok := v.(Vector); ok && vec.Len() == 4 {
		// Alpha passes through color conversions.
		return Vec4(out.X, out.Y, out.Z, vec.At(3))
	}
	return FromMS3(out)
}

func toColorful(c ms3.Vec) colorful.Color {
	return colorful.Color{R: float64(c.X), G: float64(c.Y), B: float64(c.Z)}
}

func fromColorful(c colorful.Color) ms3.Vec {
	return ms3.Vec{X: float32(c.R), Y: float32(c.G), Z: float32(c.B)}
}

func mod360(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
