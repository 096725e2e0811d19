package matgraph

import (
	"strings"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/matgraph/texture"
)

// Slot is a property of the material record.
type Slot uint8

const (
	slotNone Slot = iota
	SlotBaseColor
	SlotMetallic
	SlotSpecular
	SlotRoughness
	SlotAnisotropy
	SlotEmissiveColor
	SlotNormal
	SlotAmbientOcclusion
	SlotOpacity
	SlotSubsurfaceColor
	SlotClearCoat
	SlotClearCoatRoughness
	// SlotMaterial receives a BSDF closure that is unpacked into the other slots.
	SlotMaterial
	lastSlot
)

var slotNames = [lastSlot]string{
	slotNone:               "none",
	SlotBaseColor:          "base color",
	SlotMetallic:           "metallic",
	SlotSpecular:           "specular",
	SlotRoughness:          "roughness",
	SlotAnisotropy:         "anisotropy",
	SlotEmissiveColor:      "emissive color",
	SlotNormal:             "normal",
	SlotAmbientOcclusion:   "ambient occlusion",
	SlotOpacity:            "opacity",
	SlotSubsurfaceColor:    "subsurface color",
	SlotClearCoat:          "clear coat",
	SlotClearCoatRoughness: "clear coat roughness",
	SlotMaterial:           "front material",
}

var slotAliases = map[string]Slot{
	"opacity mask": SlotOpacity,
	"material":     SlotMaterial,
}

func (s Slot) String() string {
	if s < lastSlot {
		return slotNames[s]
	}
	return "Slot(?)"
}

// ParseSlot maps an output node pin name to its slot. Names are compared
// exactly after trimming and case folding.
func ParseSlot(name string) (Slot, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s := SlotBaseColor; s < lastSlot; s++ {
		if slotNames[s] == name {
			return s, true
		}
	}
	s, ok := slotAliases[name]
	return s, ok
}

func (s Slot) isColor() bool {
	switch s {
	case SlotBaseColor, SlotEmissiveColor, SlotNormal, SlotSubsurfaceColor:
		return true
	}
	return false
}

// Record is the flat material property record produced by reducing a graph.
// Absent properties are nil. A property backed by a texture has its map set and
// its multiplier set to 1.
type Record struct {
	BaseColor    []float32    `json:"base_color,omitempty" yaml:"base_color,omitempty"`
	BaseColorMap *texture.Ref `json:"base_color_map,omitempty" yaml:"base_color_map,omitempty"`

	Metallic    *float32     `json:"metallic,omitempty" yaml:"metallic,omitempty"`
	MetallicMap *texture.Ref `json:"metallic_map,omitempty" yaml:"metallic_map,omitempty"`

	Specular    *float32     `json:"specular,omitempty" yaml:"specular,omitempty"`
	SpecularMap *texture.Ref `json:"specular_map,omitempty" yaml:"specular_map,omitempty"`

	Roughness    *float32     `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	RoughnessMap *texture.Ref `json:"roughness_map,omitempty" yaml:"roughness_map,omitempty"`

	Anisotropy    *float32     `json:"anisotropy,omitempty" yaml:"anisotropy,omitempty"`
	AnisotropyMap *texture.Ref `json:"anisotropy_map,omitempty" yaml:"anisotropy_map,omitempty"`

	// EmissiveColor has no component above 1; EmissiveIntensity carries the HDR scale.
	EmissiveColor     []float32    `json:"emissive_color,omitempty" yaml:"emissive_color,omitempty"`
	EmissiveIntensity *float32     `json:"emissive_intensity,omitempty" yaml:"emissive_intensity,omitempty"`
	EmissiveMap       *texture.Ref `json:"emissive_map,omitempty" yaml:"emissive_map,omitempty"`

	Normal    []float32    `json:"normal,omitempty" yaml:"normal,omitempty"`
	NormalMap *texture.Ref `json:"normal_map,omitempty" yaml:"normal_map,omitempty"`

	AmbientOcclusion    *float32     `json:"ambient_occlusion,omitempty" yaml:"ambient_occlusion,omitempty"`
	AmbientOcclusionMap *texture.Ref `json:"ambient_occlusion_map,omitempty" yaml:"ambient_occlusion_map,omitempty"`

	Opacity    *float32     `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	OpacityMap *texture.Ref `json:"opacity_map,omitempty" yaml:"opacity_map,omitempty"`

	SubsurfaceColor    []float32    `json:"subsurface_color,omitempty" yaml:"subsurface_color,omitempty"`
	SubsurfaceColorMap *texture.Ref `json:"subsurface_color_map,omitempty" yaml:"subsurface_color_map,omitempty"`

	ClearCoat    *float32     `json:"clear_coat,omitempty" yaml:"clear_coat,omitempty"`
	ClearCoatMap *texture.Ref `json:"clear_coat_map,omitempty" yaml:"clear_coat_map,omitempty"`

	ClearCoatRoughness    *float32     `json:"clear_coat_roughness,omitempty" yaml:"clear_coat_roughness,omitempty"`
	ClearCoatRoughnessMap *texture.Ref `json:"clear_coat_roughness_map,omitempty" yaml:"clear_coat_roughness_map,omitempty"`

	Unlit bool `json:"unlit,omitempty" yaml:"unlit,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	pending []binding
}

// binding is a deferred texture operation awaiting resolution into a slot's map.
type binding struct {
	slot Slot
	op   *Deferred
}

// Pending returns the amount of deferred operations not yet finalized.
func (r *Record) Pending() int { return len(r.pending) }

// Map returns the texture map of slot s, or nil.
func (r *Record) Map(s Slot) *texture.Ref { return *r.mapField(s) }

func (r *Record) mapField(s Slot) **texture.Ref {
	switch s {
	case SlotBaseColor:
		return &r.BaseColorMap
	case SlotMetallic:
		return &r.MetallicMap
	case SlotSpecular:
		return &r.SpecularMap
	case SlotRoughness:
		return &r.RoughnessMap
	case SlotAnisotropy:
		return &r.AnisotropyMap
	case SlotEmissiveColor:
		return &r.EmissiveMap
	case SlotNormal:
		return &r.NormalMap
	case SlotAmbientOcclusion:
		return &r.AmbientOcclusionMap
	case SlotOpacity:
		return &r.OpacityMap
	case SlotSubsurfaceColor:
		return &r.SubsurfaceColorMap
	case SlotClearCoat:
		return &r.ClearCoatMap
	case SlotClearCoatRoughness:
		return &r.ClearCoatRoughnessMap
	}
	panic("matgraph: slot without texture map: " + s.String())
}

func (r *Record) scalarField(s Slot) **float32 {
	switch s {
	case SlotMetallic:
		return &r.Metallic
	case SlotSpecular:
		return &r.Specular
	case SlotRoughness:
		return &r.Roughness
	case SlotAnisotropy:
		return &r.Anisotropy
	case SlotAmbientOcclusion:
		return &r.AmbientOcclusion
	case SlotOpacity:
		return &r.Opacity
	case SlotClearCoat:
		return &r.ClearCoat
	case SlotClearCoatRoughness:
		return &r.ClearCoatRoughness
	}
	panic("matgraph: slot is not scalar: " + s.String())
}

func (r *Record) colorField(s Slot) *[]float32 {
	switch s {
	case SlotBaseColor:
		return &r.BaseColor
	case SlotEmissiveColor:
		return &r.EmissiveColor
	case SlotNormal:
		return &r.Normal
	case SlotSubsurfaceColor:
		return &r.SubsurfaceColor
	}
	panic("matgraph: slot is not a color: " + s.String())
}

// set stores v into slot s. Values that have no meaning for the slot are ignored.
func (r *Record) set(s Slot, v Value) {
	if s == SlotMaterial {
		// A texture on the material pin is the closure's albedo.
		switch v.(type) {
		case TextureRef, *Deferred:
			s = SlotBaseColor
		}
	}
	switch v := v.(type) {
	case TextureRef:
		r.setMap(s, v.Ref())
	case *Deferred:
		// Until finalized the slot shows the unmodified source texture.
		r.setMap(s, v.sourceRef().Ref())
		r.pending = append(r.pending, binding{slot: s, op: v})
	case Scalar, Vector:
		if s == SlotMaterial {
			return
		}
		if s.isColor() {
			r.setColor(s, toVec3(v, ms3.Vec{}))
		} else {
			f := toScalar(v, 0)
			*r.scalarField(s) = &f
		}
	case *BSDF:
		if s == SlotMaterial {
			r.unpack(v)
		} else if s.isColor() {
			r.setColor(s, v.Diffuse)
		}
	}
}

func (r *Record) setColor(s Slot, c ms3.Vec) {
	if s == SlotEmissiveColor {
		// HDR emission is split into a unit color and an intensity.
		intensity := float32(1)
		if m := maxComponent(c); m > 1 {
			intensity = m
			c = ms3.Scale(1/m, c)
		}
		r.EmissiveIntensity = &intensity
	}
	*r.colorField(s) = []float32{c.X, c.Y, c.Z}
}

func (r *Record) setMap(s Slot, ref texture.Ref) {
	if s == SlotMaterial {
		return
	}
	*r.mapField(s) = &ref
	// The map is not additionally darkened by its multiplier.
	if s.isColor() {
		if s != SlotNormal {
			r.setColor(s, splat3(1))
		}
	} else {
		one := float32(1)
		*r.scalarField(s) = &one
	}
}

// unpack distributes a closure over the record. Specular is recovered from F0
// using the dielectric mapping of the metalness conversion.
func (r *Record) unpack(b *BSDF) {
	if b.DiffuseMap != nil {
		r.set(SlotBaseColor, b.DiffuseMap)
		if r.BaseColorMap != nil && b.Diffuse != splat3(1) {
			r.BaseColor = []float32{b.Diffuse.X, b.Diffuse.Y, b.Diffuse.Z}
		}
	} else {
		r.setColor(SlotBaseColor, b.Diffuse)
	}
	spec := clamp01(luminance(b.F0) / dielectricF0Scale)
	rough := b.Roughness
	opacity := b.Coverage
	r.Specular, r.Roughness, r.Opacity = &spec, &rough, &opacity
	if b.Emissive != nil {
		r.setColor(SlotEmissiveColor, *b.Emissive)
	}
	if b.Transmittance != nil {
		r.setColor(SlotSubsurfaceColor, *b.Transmittance)
	}
	if b.Normal != nil {
		r.set(SlotNormal, b.Normal)
	}
	r.Unlit = r.Unlit || b.Unlit
}
