package matgraph

import "github.com/soypat/matgraph/texture"

func evalConstant(n *Node) Value {
	return Scalar(propFloatOr(n, 0, "Value", "R", "DefaultValue", "Constant"))
}

func evalVectorConstant(kind Kind, n *Node, out *Pin) Value {
	arity := 4
	switch kind {
	case KindConstant2Vector:
		arity = 2
	case KindConstant3Vector:
		arity = 3
	}
	v, ok := propColor(n, arity)
	if !ok {
		v = VecN(arity, [4]float32{0, 0, 0, 1})
	}
	return selectChannel(v, out)
}

// selectChannel returns the component of v named by a single channel output
// pin such as "R" or "A", or v itself for any other pin.
func selectChannel(v Vector, out *Pin) Value {
	if out == nil {
		return v
	}
	ch := texture.ParseChannel(out.ID)
	if ch == texture.ChannelAll {
		ch = texture.ParseChannel(out.Name)
	}
	switch ch {
	case texture.ChannelR:
		return Scalar(v.At(0))
	case texture.ChannelG:
		return Scalar(v.At(1))
	case texture.ChannelB:
		return Scalar(v.At(2))
	case texture.ChannelA:
		if v.Len() < 4 {
			return Scalar(1)
		}
		return Scalar(v.At(3))
	}
	return v
}
