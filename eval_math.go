package matgraph

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/matgraph/texpipe"
)

// operands evaluates the A and B inputs of a binary node with their constant
// property fallbacks. Absent operands take def.
func (e *Evaluator) operands(kind Kind, n *Node, vs visitSet) (a, b Value) {
	var defA, defB float32
	switch kind {
	case KindPower:
		a = e.in(n, vs, "base", "a")
		if a == nil {
			a = propValue(n, "ConstA")
		}
		b = e.in(n, vs, "exp", "exponent", "b")
		if b == nil {
			b = propValue(n, "ConstExponent")
		}
		defA, defB = 0, 1
	case KindStep:
		a = e.inOrProp(n, vs, "y", "ConstY")
		b = e.inOrProp(n, vs, "x", "ConstX")
	default:
		a = e.inOrProp(n, vs, "a", "ConstA")
		b = e.inOrProp(n, vs, "b", "ConstB")
		switch kind {
		case KindMultiply, KindDivide:
			defA, defB = 1, 1
		case KindFmod:
			defB = 1
		}
	}
	if a == nil {
		a = Scalar(defA)
	}
	if b == nil {
		b = Scalar(defB)
	}
	return a, b
}

func (e *Evaluator) evalBinary(kind Kind, n *Node, vs visitSet) Value {
	a, b := e.operands(kind, n, vs)
	if isTexture(a) || isTexture(b) {
		return textureBinary(kind, a, b)
	}
	switch kind {
	case KindDotProduct:
		prod := broadcast(a, b, func(x, y float32) float32 { return x * y })
		c, dim, ok := numeric(prod)
		if !ok {
			return nil
		}
		var sum float32
		for i := 0; i < dim; i++ {
			sum += c[i]
		}
		return Scalar(sum)
	case KindCrossProduct:
		if !isColor(a) || !isColor(b) {
			return nil
		}
		return FromMS3(ms3.Cross(toVec3(a, ms3.Vec{}), toVec3(b, ms3.Vec{})))
	}
	return broadcast(a, b, binaryFunc(kind))
}

func binaryFunc(kind Kind) func(x, y float32) float32 {
	switch kind {
	case KindAdd:
		return func(x, y float32) float32 { return x + y }
	case KindSubtract:
		return func(x, y float32) float32 { return x - y }
	case KindMultiply:
		return func(x, y float32) float32 { return x * y }
	case KindDivide:
		return safeDiv
	case KindMin:
		return math32.Min
	case KindMax:
		return math32.Max
	case KindPower:
		// Negative bases are mirrored to keep previews free of NaNs.
		return func(x, y float32) float32 { return math32.Pow(math32.Abs(x), y) }
	case KindFmod:
		return func(x, y float32) float32 {
			if y == 0 {
				return 0
			}
			return math32.Mod(x, y)
		}
	case KindStep:
		return func(edge, x float32) float32 { return boolf(x >= edge) }
	}
	panic("matgraph: no binary function for " + kind.String())
}

// textureBinary handles binary arithmetic where at least one operand is a texture.
// Texture with color multiply, add, subtract, divide and power become deferred
// pipeline operations. Any other combination yields the first texture operand.
func textureBinary(kind Kind, a, b Value) Value {
	tex, other := a, b
	texFirst := isTexture(a)
	if !texFirst {
		tex, other = b, a
	}
	if !isColor(other) {
		// Texture with texture: documented limitation, first texture wins.
		return tex
	}
	switch {
	case kind == KindMultiply:
		return &Deferred{Op: texpipe.OpMultiply, Source: tex, ColorA: color3(other)}
	case kind == KindAdd:
		return &Deferred{Op: texpipe.OpAdd, Source: tex, ColorA: color3(other)}
	case kind == KindSubtract && texFirst:
		return &Deferred{Op: texpipe.OpSubtract, Source: tex, ColorA: color3(other)}
	case kind == KindDivide && texFirst:
		c := color3(other)
		for i := range c {
			c[i] = safeDiv(1, c[i])
		}
		return &Deferred{Op: texpipe.OpMultiply, Source: tex, ColorA: c}
	case kind == KindPower && texFirst:
		return &Deferred{Op: texpipe.OpPower, Source: tex, Amount: toScalar(other, 1)}
	}
	return tex
}

func (e *Evaluator) evalClamp(n *Node, vs visitSet) Value {
	v := e.in(n, vs, "input", "value", "x", "a")
	if v == nil || isTexture(v) {
		return v
	}
	lo := e.inOrProp(n, vs, "min", "MinDefault")
	if lo == nil {
		lo = Scalar(0)
	}
	hi := e.inOrProp(n, vs, "max", "MaxDefault")
	if hi == nil {
		hi = Scalar(1)
	}
	return broadcast(broadcast(v, lo, math32.Max), hi, math32.Min)
}

func (e *Evaluator) evalUnary(kind Kind, n *Node, vs visitSet) Value {
	v := e.in(n, vs, "input", "value", "x", "a")
	if v == nil {
		if c, ok := propFloat(n, "ConstInput", "Value"); ok {
			v = Scalar(c)
		} else {
			return nil
		}
	}
	switch kind {
	case KindNormalize:
		c, dim, ok := numeric(v)
		if !ok {
			return v
		}
		var sum float32
		for i := 0; i < dim; i++ {
			sum += c[i] * c[i]
		}
		norm := math32.Sqrt(sum)
		return mapValue(v, func(x float32) float32 { return safeDiv(x, norm) })
	case KindLength:
		c, dim, ok := numeric(v)
		if !ok {
			return Scalar(toScalar(v, 0))
		}
		var sum float32
		for i := 0; i < dim; i++ {
			sum += c[i] * c[i]
		}
		return Scalar(math32.Sqrt(sum))
	}
	var fn func(float32) float32
	switch kind {
	case KindSaturate:
		fn = clamp01
	case KindOneMinus:
		fn = func(x float32) float32 { return 1 - x }
	case KindAbs:
		fn = math32.Abs
	case KindFloor:
		fn = math32.Floor
	case KindCeil:
		fn = math32.Ceil
	case KindFrac:
		fn = func(x float32) float32 { return x - math32.Floor(x) }
	case KindSine, KindCosine:
		scale := float32(1)
		if period, ok := propFloat(n, "Period"); ok && period > 0 {
			scale = 2 * pi / period
		}
		if kind == KindSine {
			fn = func(x float32) float32 { return math32.Sin(x * scale) }
		} else {
			fn = func(x float32) float32 { return math32.Cos(x * scale) }
		}
	case KindSquareRoot:
		fn = func(x float32) float32 { return math32.Sqrt(math32.Max(x, 0)) }
	default:
		panic("matgraph: no unary function for " + kind.String())
	}
	return mapValue(v, fn)
}

func (e *Evaluator) evalSmoothStep(n *Node, vs visitSet) Value {
	v := e.inOrProp(n, vs, "value", "ConstValue")
	if v == nil || isTexture(v) {
		return v
	}
	lo := e.scalarIn(n, vs, "min", "ConstMin", 0)
	hi := e.scalarIn(n, vs, "max", "ConstMax", 1)
	return mapValue(v, func(x float32) float32 { return ms1.SmoothStep(lo, hi, x) })
}

// evalLerp interpolates A to B by Alpha. A texture alpha between two colors, or a
// texture A towards a color B, becomes a deferred pipeline operation.
func (e *Evaluator) evalLerp(n *Node, vs visitSet) Value {
	a := e.inOrProp(n, vs, "a", "ConstA")
	b := e.inOrProp(n, vs, "b", "ConstB")
	t := e.inOrProp(n, vs, "alpha", "ConstAlpha")
	if a == nil {
		a = Scalar(0)
	}
	if b == nil {
		b = Scalar(1)
	}
	if t == nil {
		t = Scalar(0.5)
	}
	switch {
	case isTexture(t) && isColor(a) && isColor(b):
		return &Deferred{Op: texpipe.OpLerpByTexture, Source: t, ColorA: color3(a), ColorB: color3(b)}
	case isTexture(a) && isColor(b) && isColor(t):
		return &Deferred{Op: texpipe.OpLerpWithColor, Source: a, ColorA: color3(b), Amount: clamp01(toScalar(t, 0.5))}
	case isTexture(b) && isColor(a) && isColor(t):
		return &Deferred{Op: texpipe.OpLerpWithColor, Source: b, ColorA: color3(a), Amount: 1 - clamp01(toScalar(t, 0.5))}
	case isTexture(a) || isTexture(b):
		if isTexture(a) {
			return a
		}
		return b
	}
	out := lerpValues(a, b, toScalar(t, 0.5))
	if out == nil {
		return a
	}
	return out
}
