package matgraph

import (
	"strings"

	"github.com/soypat/matgraph/texture"
)

var componentPins = [4][2]string{{"x", "r"}, {"y", "g"}, {"z", "b"}, {"w", "a"}}

func (e *Evaluator) evalMakeFloat(kind Kind, n *Node, vs visitSet) Value {
	arity := 2
	switch kind {
	case KindMakeFloat3:
		arity = 3
	case KindMakeFloat4:
		arity = 4
	}
	var c [4]float32
	for i := 0; i < arity; i++ {
		def := float32(0)
		if i == 3 {
			def = 1
		}
		c[i] = toScalar(e.in(n, vs, componentPins[i][0], componentPins[i][1]), def)
	}
	return VecN(arity, c)
}

// evalAppend concatenates the components of A and B, up to four.
func (e *Evaluator) evalAppend(n *Node, vs visitSet) Value {
	a := e.inOrProp(n, vs, "a", "ConstA")
	b := e.inOrProp(n, vs, "b", "ConstB")
	ca, na, oka := numeric(a)
	cb, nb, okb := numeric(b)
	switch {
	case !oka && !okb:
		return nil
	case !oka:
		return b
	case !okb:
		return a
	}
	var out [4]float32
	k := copy(out[:], ca[:na])
	k += copy(out[k:], cb[:nb])
	return fromComponents(out, k)
}

// evalBreakOut returns the component of the input requested by the output pin.
// Alpha defaults to 1 when the input has no fourth component.
func (e *Evaluator) evalBreakOut(n *Node, out *Pin, vs visitSet) Value {
	v := e.in(n, vs, "float", "input", "in", "vector")
	idx := componentIndex(out)
	if ref, ok := v.(TextureRef); ok {
		if idx >= 0 {
			ref.Channel = texture.Channel(idx + 1)
		}
		return ref
	}
	c, dim, ok := numeric(v)
	if !ok || idx < 0 {
		return v
	}
	if dim == 1 {
		// A scalar decomposes into itself on every color channel.
		if idx == 3 {
			return Scalar(1)
		}
		return Scalar(c[0])
	}
	if idx >= dim {
		if idx == 3 {
			return Scalar(1)
		}
		return Scalar(0)
	}
	return Scalar(c[idx])
}

func componentIndex(out *Pin) int {
	if out == nil {
		return -1
	}
	for _, name := range [2]string{out.ID, out.Name} {
		name = strings.ToLower(strings.TrimSpace(name))
		for i, pins := range componentPins {
			if name == pins[0] || name == pins[1] {
				return i
			}
		}
		switch name {
		case "red":
			return 0
		case "green":
			return 1
		case "blue":
			return 2
		case "alpha":
			return 3
		}
	}
	return -1
}
