package texpipe

import (
	"errors"
	"strconv"

	"github.com/soypat/matgraph/texture"
)

// Op is a per-pixel compositing operation.
type Op uint8

const (
	opInvalid Op = iota
	// OpMultiply multiplies each texel by ColorA.
	OpMultiply
	// OpAdd adds ColorA to each texel.
	OpAdd
	// OpSubtract subtracts ColorA from each texel.
	OpSubtract
	// OpPower raises each normalized texel to Amount.
	OpPower
	// OpLerpWithColor interpolates each texel towards ColorA by Amount.
	OpLerpWithColor
	// OpLerpByTexture interpolates ColorA to ColorB using texel luminance as alpha.
	OpLerpByTexture
	lastOp
)

var opNames = [lastOp]string{
	opInvalid:       "invalid",
	OpMultiply:      "multiply",
	OpAdd:           "add",
	OpSubtract:      "subtract",
	OpPower:         "power",
	OpLerpWithColor: "lerp-color",
	OpLerpByTexture: "lerp-texture-alpha",
}

func (op Op) String() string {
	if op < lastOp {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// IsValid reports whether op is a known operation.
func (op Op) IsValid() bool { return op > opInvalid && op < lastOp }

// ParseOp returns the operation named s as returned by [Op.String].
func ParseOp(s string) (Op, error) {
	for op := OpMultiply; op < lastOp; op++ {
		if opNames[op] == s {
			return op, nil
		}
	}
	return opInvalid, errors.New("unknown texture operation " + strconv.Quote(s))
}

// Request describes one compositing operation on a source texture.
// Colors are linear RGB in [0,1] but may exceed 1. Texel alpha is always preserved.
type Request struct {
	Op     Op
	Source texture.Ref
	ColorA [3]float32
	ColorB [3]float32
	// Amount is the exponent of [OpPower] and the blend factor of [OpLerpWithColor].
	Amount float32
}

// Validate checks the request is well formed.
func (req Request) Validate() error {
	if !req.Op.IsValid() {
		return errors.New("invalid texture operation")
	} else if req.Source.IsZero() {
		return errors.New("texture operation without source")
	}
	return nil
}

// Key returns the content address of the request: operation name, source content
// identifier and numeric operands. Tiling and channel do not affect texels and are excluded.
func (req Request) Key() string {
	b := make([]byte, 0, 96)
	b = append(b, req.Op.String()...)
	b = append(b, '|')
	b = append(b, req.Source.ID...)
	b = append(b, '|')
	switch req.Op {
	case OpPower:
		b = appendFloat(b, req.Amount)
	case OpLerpWithColor:
		b = appendColor(b, req.ColorA)
		b = append(b, '|')
		b = appendFloat(b, req.Amount)
	case OpLerpByTexture:
		b = appendColor(b, req.ColorA)
		b = append(b, '|')
		b = appendColor(b, req.ColorB)
	default:
		b = appendColor(b, req.ColorA)
	}
	return string(b)
}

func appendColor(b []byte, c [3]float32) []byte {
	for i, v := range c {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendFloat(b, v)
	}
	return b
}

func appendFloat(b []byte, v float32) []byte {
	return strconv.AppendFloat(b, float64(v), 'f', 5, 32)
}
