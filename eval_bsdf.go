package matgraph

import (
	"github.com/soypat/geometry/ms3"
)

const (
	// dielectricF0Scale maps the legacy specular input to normal incidence reflectance.
	dielectricF0Scale = 0.08
	defaultSpecular   = 0.5
)

// closureIn evaluates a BSDF input, substituting the default closure.
func (e *Evaluator) closureIn(n *Node, vs visitSet, ids ...string) *BSDF {
	if b, ok := e.in(n, vs, ids...).(*BSDF); ok && b != nil {
		return b
	}
	return DefaultBSDF()
}

// vecIn evaluates a color input. A texture valued input yields the texture and
// a white multiplier so the texture is not darkened.
func (e *Evaluator) vecIn(n *Node, vs visitSet, def ms3.Vec, ids ...string) (ms3.Vec, Value) {
	v := e.in(n, vs, ids...)
	if isTexture(v) {
		return splat3(1), v
	}
	return toVec3(v, def), nil
}

func (e *Evaluator) evalSlab(n *Node, vs visitSet) Value {
	b := DefaultBSDF()
	b.Diffuse, b.DiffuseMap = e.vecIn(n, vs, b.Diffuse, "diffusealbedo", "Diffuse Albedo", "albedo", "basecolor")
	b.F0, _ = e.vecIn(n, vs, b.F0, "f0", "F0")
	b.F90, _ = e.vecIn(n, vs, b.F90, "f90", "F90")
	b.Roughness = clamp01(toScalar(e.in(n, vs, "roughness"), b.Roughness))
	b.Coverage = clamp01(toScalar(e.in(n, vs, "coverage"), b.Coverage))
	if v := e.in(n, vs, "emissivecolor", "Emissive Color", "emissive"); isColor(v) {
		em := toVec3(v, ms3.Vec{})
		b.Emissive = &em
	}
	if v := e.in(n, vs, "transmittance", "sssmfp", "SSS MFP"); isColor(v) {
		tr := toVec3(v, ms3.Vec{})
		b.Transmittance = &tr
	}
	b.Normal = e.in(n, vs, "normal")
	return b
}

// evalVerticalLayer places the top closure over the bottom one. The bottom closure
// shows through by 1-w where w = clamp01(thickness)·top.Coverage.
func (e *Evaluator) evalVerticalLayer(n *Node, vs visitSet) Value {
	top := e.closureIn(n, vs, "top")
	bottom := e.closureIn(n, vs, "bottom", "base")
	thickness := e.scalarIn(n, vs, "thickness", "Thickness", 1)
	w := clamp01(thickness) * top.Coverage
	out := mixBSDF(bottom, top, w)
	out.Coverage = 1 - (1-top.Coverage)*(1-bottom.Coverage)
	// Light emitted below is attenuated by the layer above it.
	switch {
	case top.Emissive != nil && bottom.Emissive != nil:
		em := ms3.Add(*top.Emissive, ms3.Scale(1-w, *bottom.Emissive))
		out.Emissive = &em
	case bottom.Emissive != nil:
		em := ms3.Scale(1-w, *bottom.Emissive)
		out.Emissive = &em
	case top.Emissive != nil:
		em := *top.Emissive
		out.Emissive = &em
	}
	out.Unlit = top.Unlit && w >= 1
	return out
}

func (e *Evaluator) evalHorizontalMixing(n *Node, vs visitSet) Value {
	bg := e.closureIn(n, vs, "background", "a")
	fg := e.closureIn(n, vs, "foreground", "b")
	mix := clamp01(e.scalarIn(n, vs, "mix", "Mix", 0.5))
	return mixBSDF(bg, fg, mix)
}

// mixBSDF linearly interpolates each field of a and b by t. Texture maps and
// normals come from whichever closure weighs more.
func mixBSDF(a, b *BSDF, t float32) *BSDF {
	out := a.clone()
	out.Diffuse = mix3(a.Diffuse, b.Diffuse, t)
	out.F0 = mix3(a.F0, b.F0, t)
	out.F90 = mix3(a.F90, b.F90, t)
	out.Roughness = mixf(a.Roughness, b.Roughness, t)
	out.Coverage = mixf(a.Coverage, b.Coverage, t)
	out.Emissive = mixOptional(a.Emissive, b.Emissive, t)
	out.Transmittance = mixOptional(a.Transmittance, b.Transmittance, t)
	out.Unlit = a.Unlit && b.Unlit
	if t >= 0.5 || out.DiffuseMap == nil {
		if b.DiffuseMap != nil {
			out.DiffuseMap = b.DiffuseMap
		}
	}
	if t >= 0.5 || out.Normal == nil {
		if b.Normal != nil {
			out.Normal = b.Normal
		}
	}
	return out
}

// mixOptional interpolates optional vectors. An absent side counts as zero.
func mixOptional(a, b *ms3.Vec, t float32) *ms3.Vec {
	if a == nil && b == nil {
		return nil
	}
	var va, vb ms3.Vec
	if a != nil {
		va = *a
	}
	if b != nil {
		vb = *b
	}
	m := mix3(va, vb, t)
	return &m
}

// metalness converts base color, metallic and specular to closure reflectances.
func metalness(base ms3.Vec, metallic, specular float32) (diffuse, f0 ms3.Vec) {
	metallic = clamp01(metallic)
	diffuse = ms3.Scale(1-metallic, base)
	f0 = mix3(splat3(dielectricF0Scale*clamp01(specular)), base, metallic)
	return diffuse, f0
}

func (e *Evaluator) evalMetalnessHelper(n *Node, vs visitSet) Value {
	b := DefaultBSDF()
	base, tex := e.vecIn(n, vs, b.Diffuse, "basecolor", "Base Color")
	metallic := e.scalarIn(n, vs, "metallic", "Metallic", 0)
	specular := e.scalarIn(n, vs, "specular", "Specular", defaultSpecular)
	b.Diffuse, b.F0 = metalness(base, metallic, specular)
	b.F90 = splat3(1)
	b.DiffuseMap = tex
	if r := e.in(n, vs, "roughness"); r != nil {
		b.Roughness = clamp01(toScalar(r, b.Roughness))
	}
	return b
}

func (e *Evaluator) evalUnlit(n *Node, vs visitSet) Value {
	b := &BSDF{Unlit: true, Coverage: 1}
	em, tex := e.vecIn(n, vs, ms3.Vec{}, "emissivecolor", "Emissive Color", "emissive")
	if tex != nil {
		b.DiffuseMap = tex
	}
	b.Emissive = &em
	if v := e.in(n, vs, "transmittancecolor", "Transmittance Color", "transmittance"); isColor(v) {
		tr := toVec3(v, splat3(1))
		b.Transmittance = &tr
	}
	b.Normal = e.in(n, vs, "normal")
	return b
}

// evalConvertMaterialAttributes converts legacy metallic workflow inputs to a closure.
func (e *Evaluator) evalConvertMaterialAttributes(n *Node, vs visitSet) Value {
	b := DefaultBSDF()
	base, tex := e.vecIn(n, vs, splat3(neutralGray), "basecolor", "Base Color")
	metallic := e.scalarIn(n, vs, "metallic", "Metallic", 0)
	specular := e.scalarIn(n, vs, "specular", "Specular", defaultSpecular)
	b.Diffuse, b.F0 = metalness(base, metallic, specular)
	b.DiffuseMap = tex
	b.Roughness = clamp01(toScalar(e.in(n, vs, "roughness"), b.Roughness))
	b.Coverage = clamp01(toScalar(e.in(n, vs, "opacity"), 1))
	if v := e.in(n, vs, "emissivecolor", "Emissive Color"); isColor(v) {
		em := toVec3(v, ms3.Vec{})
		b.Emissive = &em
	}
	b.Normal = e.in(n, vs, "normal")
	return b
}
