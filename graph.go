package matgraph

import (
	"strings"
)

// PinType is the declared value kind of a pin.
type PinType uint8

const (
	PinWildcard PinType = iota
	PinScalar
	PinVec2
	PinVec3
	PinVec4
	PinTexture
	PinBSDF
	PinUV
)

var pinTypeNames = [...]string{
	PinWildcard: "wildcard",
	PinScalar:   "float",
	PinVec2:     "vec2",
	PinVec3:     "vec3",
	PinVec4:     "vec4",
	PinTexture:  "texture",
	PinBSDF:     "substrate",
	PinUV:       "uv",
}

func (pt PinType) String() string {
	if int(pt) < len(pinTypeNames) {
		return pinTypeNames[pt]
	}
	return "wildcard"
}

// ParsePinType parses pin type names as authored by the editor. Unknown names are wildcards.
func ParsePinType(s string) PinType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "float1", "scalar":
		return PinScalar
	case "float2", "vec2":
		return PinVec2
	case "float3", "vec3", "color":
		return PinVec3
	case "float4", "vec4":
		return PinVec4
	case "texture", "texture2d", "t2d":
		return PinTexture
	case "substrate", "bsdf", "material":
		return PinBSDF
	case "uv", "uvs":
		return PinUV
	}
	return PinWildcard
}

// Pin is a named input or output slot of a [Node].
type Pin struct {
	ID   string
	Name string
	Type PinType
	// Default is used when an input pin is unconnected. Nil means no default.
	Default Value
	// Link is the identifier of the incoming link of an input pin. Empty when unconnected.
	Link string
}

// Node is an expression node of a material graph. The evaluator only reads nodes.
type Node struct {
	ID string
	// Kind is the node kind as authored, see [ParseKind].
	Kind       string
	Properties map[string]any
	Inputs     []*Pin
	Outputs    []*Pin
	// Output marks the designated output node of the graph.
	Output bool
}

// Input returns the input pin identified by id or, failing that, named name
// (case-insensitive, trimmed). Returns nil if not found.
func (n *Node) Input(id string) *Pin {
	return findPin(n.Inputs, id)
}

// OutputPin returns the output pin identified by id or name. Returns nil if not found.
func (n *Node) OutputPin(id string) *Pin {
	return findPin(n.Outputs, id)
}

func findPin(pins []*Pin, id string) *Pin {
	for _, p := range pins {
		if p != nil && p.ID == id {
			return p
		}
	}
	for _, p := range pins {
		if p != nil && pinNameEq(p.Name, id) {
			return p
		}
	}
	return nil
}

func pinNameEq(name, want string) bool {
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(want))
}

// Link is a directed edge from a producer output pin to a consumer input pin.
type Link struct {
	ID       string
	FromNode string
	FromPin  string
	ToNode   string
	ToPin    string
}

// Graph is a material graph. Links are keyed by link identifier.
type Graph struct {
	Nodes []*Node
	Links map[string]*Link
}

// Node returns the node with identifier id or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n != nil && n.ID == id {
			return n
		}
	}
	return nil
}

// OutputNode returns the designated output node, or nil when the graph has none.
// When several nodes are flagged the first one is returned.
func (g *Graph) OutputNode() *Node {
	if g == nil {
		return nil
	}
	for _, n := range g.Nodes {
		if n != nil && n.Output {
			return n
		}
	}
	return nil
}

// Connect adds a link from the output pin fromPin of node from to the input pin toPin
// of node to, replacing any link previously feeding the input. It returns the link identifier.
// Connect is intended for programmatic graph construction and tests.
func (g *Graph) Connect(id string, from *Node, fromPin string, to *Node, toPin string) string {
	if g.Links == nil {
		g.Links = make(map[string]*Link)
	}
	in := to.Input(toPin)
	if in == nil {
		panic("matgraph: no input pin " + toPin + " on node " + to.ID)
	} else if from.OutputPin(fromPin) == nil {
		panic("matgraph: no output pin " + fromPin + " on node " + from.ID)
	}
	if in.Link != "" {
		delete(g.Links, in.Link)
	}
	g.Links[id] = &Link{ID: id, FromNode: from.ID, FromPin: fromPin, ToNode: to.ID, ToPin: toPin}
	in.Link = id
	return id
}
