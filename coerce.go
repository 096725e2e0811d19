package matgraph

import (
	"github.com/soypat/geometry/ms3"
)

// numeric returns the components of a [Scalar] or [Vector]. ok is false for any other value.
func numeric(v Value) (c [4]float32, n int, ok bool) {
	switch v := v.(type) {
	case Scalar:
		return [4]float32{float32(v)}, 1, true
	case Vector:
		return v.c, v.Len(), true
	}
	return c, 0, false
}

func fromComponents(c [4]float32, n int) Value {
	if n <= 1 {
		return Scalar(c[0])
	}
	return VecN(n, c)
}

// isTexture reports whether v is texture valued, resolved or not.
func isTexture(v Value) bool {
	switch v.(type) {
	case TextureRef, *Deferred:
		return true
	}
	return false
}

// isColor reports whether v is a scalar or vector.
func isColor(v Value) bool {
	_, _, ok := numeric(v)
	return ok
}

// broadcast applies fn elementwise. A scalar operand is broadcast over the other
// operand's components; two vectors of differing arity are truncated to the
// shorter one. Returns nil if either operand is not numeric.
func broadcast(a, b Value, fn func(x, y float32) float32) Value {
	ca, na, oka := numeric(a)
	cb, nb, okb := numeric(b)
	if !oka || !okb {
		return nil
	}
	var n int
	switch {
	case na == 1:
		n = nb
		ca = [4]float32{ca[0], ca[0], ca[0], ca[0]}
	case nb == 1:
		n = na
		cb = [4]float32{cb[0], cb[0], cb[0], cb[0]}
	default:
		n = min(na, nb)
	}
	var out [4]float32
	for i := 0; i < n; i++ {
		out[i] = fn(ca[i], cb[i])
	}
	return fromComponents(out, n)
}

// mapValue applies fn to each component of a numeric value. Texture values are
// returned unchanged. Other values yield nil.
func mapValue(v Value, fn func(float32) float32) Value {
	if isTexture(v) {
		return v
	}
	c, n, ok := numeric(v)
	if !ok {
		return nil
	}
	for i := 0; i < n; i++ {
		c[i] = fn(c[i])
	}
	return fromComponents(c, n)
}

// toScalar coerces v to a scalar. Vectors yield their first component, textures
// yield a mid value, and absent or non-numeric values yield def.
func toScalar(v Value, def float32) float32 {
	switch v := v.(type) {
	case Scalar:
		return float32(v)
	case Vector:
		return v.At(0)
	case TextureRef, *Deferred:
		return textureScalar
	}
	return def
}

// toVec3 coerces v to a 3-vector. Scalars are splatted, 2-vectors get z=0.
// Textures and absent values yield def.
func toVec3(v Value, def ms3.Vec) ms3.Vec {
	switch v := v.(type) {
	case Scalar:
		return splat3(float32(v))
	case Vector:
		return v.MS3()
	}
	return def
}

// color3 returns v as an RGB triple for texture pipeline operands.
func color3(v Value) [3]float32 {
	c := toVec3(v, ms3.Vec{})
	return [3]float32{c.X, c.Y, c.Z}
}

// lerpValues interpolates numeric values a and b by t clamped to [0,1].
func lerpValues(a, b Value, t float32) Value {
	t = clamp01(t)
	return broadcast(a, b, func(x, y float32) float32 { return x + (y-x)*t })
}
