package matgraph

import (
	"strconv"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/matgraph/texpipe"
	"github.com/soypat/matgraph/texture"
)

// Value is the result of evaluating a pin. The set of implementations is closed:
// [Scalar], [Vector], [TextureRef], [UVTransform], [*BSDF] and [*Deferred].
// A nil Value means no value is available.
type Value interface {
	value()
}

func (Scalar) value()      {}
func (Vector) value()      {}
func (TextureRef) value()  {}
func (UVTransform) value() {}
func (*BSDF) value()       {}
func (*Deferred) value()   {}

// Scalar is a single real number.
type Scalar float32

// Vector is an ordered tuple of 2, 3 or 4 reals.
type Vector struct {
	n uint8
	c [4]float32
}

// Vec2 returns a 2-vector.
func Vec2(x, y float32) Vector { return Vector{n: 2, c: [4]float32{x, y}} }

// Vec3 returns a 3-vector.
func Vec3(x, y, z float32) Vector { return Vector{n: 3, c: [4]float32{x, y, z}} }

// Vec4 returns a 4-vector.
func Vec4(x, y, z, w float32) Vector { return Vector{n: 4, c: [4]float32{x, y, z, w}} }

// FromMS3 returns the 3-vector v.
func FromMS3(v ms3.Vec) Vector { return Vec3(v.X, v.Y, v.Z) }

// VecN returns a vector of arity n using the first n components of c. n is clamped to [2,4].
func VecN(n int, c [4]float32) Vector {
	n = max(2, min(4, n))
	v := Vector{n: uint8(n)}
	copy(v.c[:n], c[:n])
	return v
}

// Len returns the arity of v.
func (v Vector) Len() int { return int(v.n) }

// At returns the i'th component of v, or 0 if out of range.
func (v Vector) At(i int) float32 {
	if i < 0 || i >= int(v.n) {
		return 0
	}
	return v.c[i]
}

// Components returns v's components as a slice of length v.Len().
func (v Vector) Components() []float32 { return v.c[:v.n] }

// MS3 returns the first three components of v. Missing components are zero.
func (v Vector) MS3() ms3.Vec { return ms3.Vec{X: v.At(0), Y: v.At(1), Z: v.At(2)} }

func (v Vector) String() string {
	b := []byte{'['}
	for i, c := range v.Components() {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendFloat(b, float64(c), 'g', -1, 32)
	}
	return string(append(b, ']'))
}

// TextureRef references texture content with tiling and an optional channel selector.
type TextureRef texture.Ref

// Ref returns r as a [texture.Ref].
func (r TextureRef) Ref() texture.Ref { return texture.Ref(r) }

// UVTransform carries texture coordinate metadata from coordinate producing nodes to samplers.
type UVTransform struct {
	TileU, TileV float32
	CoordIndex   int
}

// BSDF is a physically based closure.
type BSDF struct {
	// Diffuse is the diffuse albedo.
	Diffuse ms3.Vec
	// F0 and F90 are specular reflectance at normal and grazing incidence.
	F0, F90   ms3.Vec
	Roughness float32
	// Coverage in [0,1] is how much of the surface the closure covers.
	Coverage      float32
	Emissive      *ms3.Vec
	Transmittance *ms3.Vec
	Unlit         bool
	// DiffuseMap is a texture valued albedo ([TextureRef] or [*Deferred]) when the
	// albedo came from a texture. Diffuse then acts as its multiplier.
	DiffuseMap Value
	// Normal is the value connected to the closure's normal input, if any.
	Normal Value
}

// DefaultBSDF returns the closure of a plain dielectric gray surface.
func DefaultBSDF() *BSDF {
	return &BSDF{
		Diffuse:   ms3.Vec{X: 0.18, Y: 0.18, Z: 0.18},
		F0:        ms3.Vec{X: 0.04, Y: 0.04, Z: 0.04},
		F90:       ms3.Vec{X: 1, Y: 1, Z: 1},
		Roughness: 0.5,
		Coverage:  1,
	}
}

func (b *BSDF) clone() *BSDF {
	c := *b
	if b.Emissive != nil {
		e := *b.Emissive
		c.Emissive = &e
	}
	if b.Transmittance != nil {
		t := *b.Transmittance
		c.Transmittance = &t
	}
	return &c
}

// Deferred describes a texture value that requires per-pixel compositing by
// the texture pipeline before it is known.
type Deferred struct {
	Op texpipe.Op
	// Source is the texture operand, a [TextureRef] or a nested [*Deferred].
	Source Value
	ColorA [3]float32
	ColorB [3]float32
	Amount float32
}

// sourceRef returns the innermost source texture.
func (d *Deferred) sourceRef() TextureRef {
	switch s := d.Source.(type) {
	case TextureRef:
		return s
	case *Deferred:
		return s.sourceRef()
	}
	return TextureRef{}
}
