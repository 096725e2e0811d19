package matgraph

import (
	"github.com/soypat/matgraph/texture"
)

func (e *Evaluator) evalTextureSample(n *Node, out *Pin, vs visitSet) Value {
	var ref TextureRef
	switch obj := e.in(n, vs, "tex", "texture", "textureobject").(type) {
	case TextureRef:
		ref = obj
	case *Deferred:
		// Sampling a composited texture object keeps it deferred.
		return obj
	default:
		ref = e.resolveTexture(n, propString(n, "Texture", "TextureID", "URL", "Path"))
	}
	ref.TileU = propFloatOr(n, ref.TileU, "UTiling")
	ref.TileV = propFloatOr(n, ref.TileV, "VTiling")
	if uv, ok := e.in(n, vs, "uvs", "uv", "coordinates").(UVTransform); ok {
		ref.TileU, ref.TileV = uv.TileU, uv.TileV
	}
	if out != nil && ParseKind(n.Kind) == KindTextureSample {
		ch := texture.ParseChannel(out.ID)
		if ch == texture.ChannelAll {
			ch = texture.ParseChannel(out.Name)
		}
		ref.Channel = ch
	}
	return ref
}

// resolveTexture checks id resolves to texture content, substituting the built-in
// checkerboard for unset or unresolvable identifiers.
func (e *Evaluator) resolveTexture(n *Node, id string) TextureRef {
	if id == "" {
		return TextureRef{ID: texture.CheckerboardID}
	}
	tex, err := e.textures.Get(e.ctx, id)
	if err != nil {
		e.diagf(DiagTexture, n, "texture %q unavailable, using checkerboard: %v", id, err)
		return TextureRef{ID: texture.CheckerboardID}
	}
	return TextureRef{ID: tex.ID}
}

func evalTextureCoordinate(n *Node) Value {
	return UVTransform{
		TileU:      propFloatOr(n, 1, "UTiling"),
		TileV:      propFloatOr(n, 1, "VTiling"),
		CoordIndex: int(propFloatOr(n, 0, "CoordinateIndex")),
	}
}

// evalUVPassthrough serves animated coordinate nodes. A static preview has no
// time so their coordinate input passes through unchanged.
func (e *Evaluator) evalUVPassthrough(n *Node, vs visitSet) Value {
	v := e.in(n, vs, "coordinate", "uv", "uvs")
	if uv, ok := v.(UVTransform); ok {
		return uv
	}
	return UVTransform{TileU: 1, TileV: 1}
}
