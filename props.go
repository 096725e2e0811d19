package matgraph

import (
	"strconv"
	"strings"
)

// colorRecordKeys are the properties holding a nested color record, in preference order.
var colorRecordKeys = []string{"Color", "Constant", "DefaultValue", "Value"}

func prop(n *Node, name string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}
	if v, ok := n.Properties[name]; ok {
		return v, true
	}
	for k, v := range n.Properties {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float32, bool) {
	switch v := v.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int32:
		return float32(v), true
	case int64:
		return float32(v), true
	case uint8:
		return float32(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		return float32(f), err == nil
	case Scalar:
		return float32(v), true
	}
	return 0, false
}

// propFloat returns the first numeric property found among names.
func propFloat(n *Node, names ...string) (float32, bool) {
	for _, name := range names {
		if v, ok := prop(n, name); ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func propFloatOr(n *Node, def float32, names ...string) float32 {
	if f, ok := propFloat(n, names...); ok {
		return f
	}
	return def
}

func propString(n *Node, names ...string) string {
	for _, name := range names {
		if v, ok := prop(n, name); ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func propBool(n *Node, def bool, names ...string) bool {
	for _, name := range names {
		if v, ok := prop(n, name); ok {
			switch v := v.(type) {
			case bool:
				return v
			case string:
				b, err := strconv.ParseBool(v)
				if err == nil {
					return b
				}
			default:
				if f, ok := toFloat(v); ok {
					return f != 0
				}
			}
		}
	}
	return def
}

// colorFromAny converts a color record (map with R,G,B[,A] keys) or a list of numbers to a vector.
func colorFromAny(v any) (Vector, bool) {
	var c [4]float32
	n := 0
	switch v := v.(type) {
	case Vector:
		return v, true
	case map[string]any:
		for i, key := range [4]string{"R", "G", "B", "A"} {
			f, ok := mapFloat(v, key)
			if !ok {
				break
			}
			c[i] = f
			n = i + 1
		}
	case []any:
		for i := 0; i < len(v) && i < 4; i++ {
			f, ok := toFloat(v[i])
			if !ok {
				return Vector{}, false
			}
			c[i] = f
			n = i + 1
		}
	case []float32:
		n = copy(c[:], v)
	case []float64:
		for i := 0; i < len(v) && i < 4; i++ {
			c[i] = float32(v[i])
			n = i + 1
		}
	}
	if n < 2 {
		return Vector{}, false
	}
	return VecN(n, c), true
}

func mapFloat(m map[string]any, key string) (float32, bool) {
	if v, ok := m[key]; ok {
		return toFloat(v)
	}
	if v, ok := m[strings.ToLower(key)]; ok {
		return toFloat(v)
	}
	return 0, false
}

// propColor reads a vector from n, preferring a nested color record over flat
// R, G, B, A component properties. arity limits the result's components.
func propColor(n *Node, arity int) (Vector, bool) {
	for _, key := range colorRecordKeys {
		if v, ok := prop(n, key); ok {
			if c, ok := colorFromAny(v); ok {
				return truncate(c, arity), true
			}
		}
	}
	var c [4]float32
	found := 0
	for i, key := range [4]string{"R", "G", "B", "A"} {
		f, ok := propFloat(n, key)
		if !ok {
			if i == 3 {
				c[3] = 1
			}
			continue
		}
		c[i] = f
		found++
	}
	if found == 0 {
		return Vector{}, false
	}
	return VecN(arity, c), true
}

func truncate(v Vector, arity int) Vector {
	if arity <= 0 || v.Len() <= arity {
		return v
	}
	return VecN(arity, v.c)
}

// propValue returns the property name as a value: a scalar, or a vector for color records.
func propValue(n *Node, name string) Value {
	v, ok := prop(n, name)
	if !ok {
		return nil
	}
	if f, ok := toFloat(v); ok {
		return Scalar(f)
	}
	if c, ok := colorFromAny(v); ok {
		return c
	}
	return nil
}

// ValueOf converts a decoded document value to a [Value]. Numbers become scalars;
// lists of 2 to 4 numbers and R,G,B[,A] records become vectors.
func ValueOf(v any) (Value, bool) {
	if f, ok := toFloat(v); ok {
		return Scalar(f), true
	}
	if c, ok := colorFromAny(v); ok {
		return c, true
	}
	return nil, false
}
