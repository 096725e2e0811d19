// Package matgraph evaluates user-authored material expression graphs and reduces
// them to a fixed set of physically based rendering parameters.
//
// Graph traversal is synchronous. Operations needing per-pixel work are returned as
// [*Deferred] values and resolved by the texture pipeline when a [Record] is finalized.
package matgraph

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

const (
	// divEpsilon is the smallest divisor magnitude used by Divide.
	divEpsilon = 1e-4
	// neutralGray is returned by nodes that cannot produce anything better.
	neutralGray = 0.5
	// textureScalar is the scalar a texture stands for where a number is required.
	textureScalar = 0.5
	// assumedCosTheta is the view-normal cosine used by view dependent nodes.
	assumedCosTheta = 0.5
	// defaultMaxDepth bounds pin recursion.
	defaultMaxDepth = 256
	pi              = math32.Pi
)

func clamp01(v float32) float32 { return ms1.Clamp(v, 0, 1) }

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

func mix3(x, y ms3.Vec, a float32) ms3.Vec {
	return ms3.Vec{X: mixf(x.X, y.X, a), Y: mixf(x.Y, y.Y, a), Z: mixf(x.Z, y.Z, a)}
}

func splat3(v float32) ms3.Vec { return ms3.Vec{X: v, Y: v, Z: v} }

func safeDiv(a, b float32) float32 {
	if math32.Abs(b) < divEpsilon {
		if b < 0 {
			b = -divEpsilon
		} else {
			b = divEpsilon
		}
	}
	return a / b
}

func maxComponent(v ms3.Vec) float32 {
	return math32.Max(v.X, math32.Max(v.Y, v.Z))
}

// luminance uses Rec. 709 weights on linear RGB.
func luminance(v ms3.Vec) float32 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

func hashvec3(seed float32, vecs ...ms3.Vec) float32 {
	var hashA float32 = 0.0
	var hashB float32 = 1.0
	hashA, hashB = hashAdd(hashA, hashB, seed)
	for _, v := range vecs {
		hashA, hashB = hashAdd(hashA, hashB, v.X)
		hashA, hashB = hashAdd(hashA, hashB, v.Y)
		hashA, hashB = hashAdd(hashA, hashB, v.Z)
	}
	return hashfint(hashA + hashB)
}

func hashAdd(a, b, num float32) (aNew, bNew float32) {
	const prime = 31.0
	a += num
	b *= (prime + num)
	a = hashfint(a)
	b = hashfint(b)
	return a, b
}

func hashfint(f float32) float32 {
	h := float32(int(f*1000000)%1000000) / 1000000
	if h < 0 {
		h += 1
	}
	return h // Keep within [0.0, 1.0)
}
