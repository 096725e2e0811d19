package matgraph

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/matgraph/texture"
)

// Stand-in geometry used where a per-pixel rasterization context would be needed.
var (
	// standInPosition is the world position assumed for position dependent nodes.
	standInPosition = ms3.Vec{}
	// standInView is the tangent space view direction with cosθ = assumedCosTheta.
	standInView = ms3.Vec{X: math32.Sqrt(1 - assumedCosTheta*assumedCosTheta), Z: assumedCosTheta}
)

// evalFresnel uses Schlick's approximation with a fixed view angle.
func (e *Evaluator) evalFresnel(n *Node, vs visitSet) Value {
	exp := e.scalarIn(n, vs, "exponentin", "Exponent", 5)
	f0 := e.scalarIn(n, vs, "basereflectfractionin", "BaseReflectFraction", 0.04)
	return Scalar(f0 + (1-f0)*math32.Pow(1-assumedCosTheta, exp))
}

// evalNoise hashes the (stand-in) position into a value between OutputMin and OutputMax.
func (e *Evaluator) evalNoise(n *Node, vs visitSet) Value {
	pos := toVec3(e.in(n, vs, "position"), standInPosition)
	scale := propFloatOr(n, 1, "Scale")
	seed := propFloatOr(n, 0, "Seed")
	lo := propFloatOr(n, 0, "OutputMin")
	hi := propFloatOr(n, 1, "OutputMax")
	p := ms3.Scale(scale, pos)
	p = ms3.Vec{X: math32.Floor(p.X), Y: math32.Floor(p.Y), Z: math32.Floor(p.Z)}
	return Scalar(mixf(lo, hi, hashvec3(seed, p)))
}

func (e *Evaluator) evalDistance(n *Node, vs visitSet) Value {
	a := e.in(n, vs, "a")
	b := e.in(n, vs, "b")
	if a == nil {
		a = Scalar(0)
	}
	if b == nil {
		b = Scalar(0)
	}
	diff := broadcast(a, b, func(x, y float32) float32 { return (x - y) * (x - y) })
	c, dim, ok := numeric(diff)
	if !ok {
		return nil
	}
	var sum float32
	for i := 0; i < dim; i++ {
		sum += c[i]
	}
	return Scalar(math32.Sqrt(sum))
}

// evalRotateAboutAxis rotates the position about an axis through the pivot with
// Rodrigues' formula and returns the offset from the original position.
// The angle input is in turns scaled by 2π/Period.
func (e *Evaluator) evalRotateAboutAxis(n *Node, vs visitSet) Value {
	axis := toVec3(e.in(n, vs, "normalizedrotationaxis", "axis"), ms3.Vec{Z: 1})
	turns := e.scalarIn(n, vs, "rotationangle", "RotationAngle", 0)
	pivot := toVec3(e.in(n, vs, "pivotpoint", "pivot"), ms3.Vec{})
	pos := toVec3(e.in(n, vs, "position"), standInPosition)
	period := propFloatOr(n, 1, "Period")
	if period == 0 {
		period = 1
	}
	rotated := rotateAboutAxis(pos, pivot, axis, turns*2*pi/period)
	return FromMS3(ms3.Sub(rotated, pos))
}

// rotateAboutAxis translates p to the pivot, rotates it by angle radians about the
// normalized axis and translates it back.
func rotateAboutAxis(p, pivot, axis ms3.Vec, angle float32) ms3.Vec {
	if ms3.Norm(axis) < divEpsilon {
		return p
	}
	k := ms3.Unit(axis)
	v := ms3.Sub(p, pivot)
	sin, cos := math32.Sincos(angle)
	// v' = v cosθ + (k × v) sinθ + k (k·v)(1 - cosθ)
	rot := ms3.Add(ms3.Scale(cos, v), ms3.Scale(sin, ms3.Cross(k, v)))
	rot = ms3.Add(rot, ms3.Scale(ms3.Dot(k, v)*(1-cos), k))
	return ms3.Add(rot, pivot)
}

func (e *Evaluator) evalSphereMask(n *Node, vs visitSet) Value {
	a := toVec3(e.in(n, vs, "a"), standInPosition)
	b := toVec3(e.in(n, vs, "b"), ms3.Vec{})
	radius := e.scalarIn(n, vs, "radius", "AttenuationRadius", 256)
	hardness := e.scalarIn(n, vs, "hardness", "HardnessPercent", 100)
	dist := ms3.Norm(ms3.Sub(a, b))
	normalized := safeDiv(dist, radius)
	softness := math32.Max(1-clamp01(hardness/100), divEpsilon)
	return Scalar(clamp01((1 - normalized) / softness))
}

func evalWorldPosition(n *Node) Value {
	if c, ok := propColor(n, 3); ok {
		return c
	}
	if v, ok := prop(n, "Position"); ok {
		if c, ok := colorFromAny(v); ok {
			return truncate(c, 3)
		}
	}
	return FromMS3(standInPosition)
}

// evalBumpOffset returns the parallax UV offset of the height input seen from the
// stand-in view direction.
func (e *Evaluator) evalBumpOffset(n *Node, vs visitSet) Value {
	height := e.scalarIn(n, vs, "height", "ConstHeight", 0.5)
	ratio := e.scalarIn(n, vs, "heightratioinput", "HeightRatio", 0.05)
	ref := propFloatOr(n, 0.5, "ReferencePlane")
	amount := (height - ref) * ratio
	return Vec2(standInView.X*amount, standInView.Y*amount)
}

func (e *Evaluator) evalIf(n *Node, vs visitSet) Value {
	a := e.scalarIn(n, vs, "a", "ConstA", 0)
	b := e.scalarIn(n, vs, "b", "ConstB", 0)
	threshold := propFloatOr(n, 1e-5, "EqualsThreshold")
	switch {
	case math32.Abs(a-b) <= threshold:
		if v := e.in(n, vs, "aequalsb", "a==b"); v != nil {
			return v
		}
		return e.in(n, vs, "agreaterthanb", "a>b")
	case a > b:
		return e.in(n, vs, "agreaterthanb", "a>b")
	default:
		return e.in(n, vs, "alessthanb", "a<b")
	}
}

func (e *Evaluator) evalStaticSwitch(n *Node, vs visitSet) Value {
	on := propBool(n, true, "DefaultValue", "Value")
	if v := e.in(n, vs, "value"); v != nil {
		on = toScalar(v, boolf(on)) != 0
	}
	if on {
		return e.in(n, vs, "true")
	}
	return e.in(n, vs, "false")
}

func (e *Evaluator) evalComponentMask(n *Node, vs visitSet) Value {
	v := e.in(n, vs, "input", "in")
	keys := [4]string{"R", "G", "B", "A"}
	var mask [4]bool
	selected := 0
	for i, key := range keys {
		mask[i] = propBool(n, false, key)
		if mask[i] {
			selected++
		}
	}
	if ref, ok := v.(TextureRef); ok {
		if selected == 1 {
			for i, on := range mask {
				if on {
					ref.Channel = texture.ParseChannel(keys[i])
				}
			}
		}
		return ref
	}
	c, dim, ok := numeric(v)
	if !ok || selected == 0 {
		return v
	}
	if dim == 1 {
		c, dim = [4]float32{c[0], c[0], c[0], c[0]}, 4
	}
	var out [4]float32
	k := 0
	for i := 0; i < dim; i++ {
		if mask[i] {
			out[k] = c[i]
			k++
		}
	}
	if k == 0 {
		return Scalar(0)
	}
	return fromComponents(out, k)
}
