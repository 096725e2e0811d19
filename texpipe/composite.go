package texpipe

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// Rec. 601 luma weights used for luminance-as-alpha blending.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// composite runs req's per-pixel operation over img. Operations see straight
// (non-premultiplied) channels; channel math is 8-bit, saturating at 255 and
// flooring at 0, and the result is premultiplied again by the source alpha.
func composite(img image.Image, req Request) *image.RGBA {
	fn := texelFunc(req)
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return premultiply(fn(unpremultiply(c)))
	})
}

func unpremultiply(c color.RGBA) color.RGBA {
	switch c.A {
	case 0:
		return color.RGBA{}
	case 255:
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

func premultiply(c color.RGBA) color.RGBA {
	if c.A == 255 {
		return c
	}
	a := uint32(c.A)
	mul := func(v uint8) uint8 { return uint8((uint32(v)*a + 127) / 255) }
	return color.RGBA{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func texelFunc(req Request) func(color.RGBA) color.RGBA {
	a, b := req.ColorA, req.ColorB
	switch req.Op {
	case OpMultiply:
		return func(c color.RGBA) color.RGBA {
			return texel(float32(c.R)*a[0], float32(c.G)*a[1], float32(c.B)*a[2], c.A)
		}
	case OpAdd:
		return func(c color.RGBA) color.RGBA {
			return texel(float32(c.R)+255*a[0], float32(c.G)+255*a[1], float32(c.B)+255*a[2], c.A)
		}
	case OpSubtract:
		return func(c color.RGBA) color.RGBA {
			return texel(float32(c.R)-255*a[0], float32(c.G)-255*a[1], float32(c.B)-255*a[2], c.A)
		}
	case OpPower:
		exp := req.Amount
		pow := func(v uint8) float32 { return 255 * math32.Pow(float32(v)/255, exp) }
		return func(c color.RGBA) color.RGBA {
			return texel(pow(c.R), pow(c.G), pow(c.B), c.A)
		}
	case OpLerpWithColor:
		t := ms1.Clamp(req.Amount, 0, 1)
		lerp := func(v uint8, target float32) float32 {
			return ms1.Interp(float32(v), 255*target, t)
		}
		return func(c color.RGBA) color.RGBA {
			return texel(lerp(c.R, a[0]), lerp(c.G, a[1]), lerp(c.B, a[2]), c.A)
		}
	case OpLerpByTexture:
		return func(c color.RGBA) color.RGBA {
			alpha := (lumaR*float32(c.R) + lumaG*float32(c.G) + lumaB*float32(c.B)) / 255
			return texel(
				255*(a[0]+(b[0]-a[0])*alpha),
				255*(a[1]+(b[1]-a[1])*alpha),
				255*(a[2]+(b[2]-a[2])*alpha),
				c.A,
			)
		}
	}
	return func(c color.RGBA) color.RGBA { return c }
}

func texel(r, g, b float32, a uint8) color.RGBA {
	return color.RGBA{R: sat8(r), G: sat8(g), B: sat8(b), A: a}
}

func sat8(v float32) uint8 {
	if math32.IsNaN(v) || v <= 0 {
		return 0
	} else if v >= 255 {
		return 255
	}
	return uint8(v)
}
