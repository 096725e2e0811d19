package matgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soypat/matgraph/texture"
)

// visitSet holds the consumer pins on the current evaluation path.
// It is never mutated once passed down; see [visitSet.with].
type visitSet map[*Pin]struct{}

// with returns a copy of vs that also contains p. Copying lets independent branches
// of a diamond shaped graph revisit the same pin while a single path cannot.
func (vs visitSet) with(p *Pin) visitSet {
	next := make(visitSet, len(vs)+1)
	for k := range vs {
		next[k] = struct{}{}
	}
	next[p] = struct{}{}
	return next
}

// DiagnosticKind classifies non-fatal evaluation problems.
type DiagnosticKind uint8

const (
	DiagUnknownKind DiagnosticKind = iota + 1
	DiagBrokenLink
	DiagCycle
	DiagDepth
	DiagTexture
	DiagDegraded
)

func (dk DiagnosticKind) String() string {
	switch dk {
	case DiagUnknownKind:
		return "unknown-kind"
	case DiagBrokenLink:
		return "broken-link"
	case DiagCycle:
		return "cycle"
	case DiagDepth:
		return "depth"
	case DiagTexture:
		return "texture"
	case DiagDegraded:
		return "degraded"
	}
	return "diagnostic"
}

// Diagnostic is a non-fatal problem found while evaluating a graph.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	NodeID  string         `json:"node,omitempty" yaml:"node,omitempty"`
	Message string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return d.Kind.String() + ": " + d.Message
	}
	return d.Kind.String() + " at node " + d.NodeID + ": " + d.Message
}

// MarshalText implements encoding.TextMarshaler for readable record output.
func (dk DiagnosticKind) MarshalText() ([]byte, error) { return []byte(dk.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (dk *DiagnosticKind) UnmarshalText(text []byte) error {
	for k := DiagUnknownKind; k <= DiagDegraded; k++ {
		if k.String() == string(text) {
			*dk = k
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", text)
}

// Evaluator resolves pins of one graph to values. An Evaluator is meant for a
// single evaluation pass and is not safe for concurrent use.
type Evaluator struct {
	graph    *Graph
	nodes    map[string]*Node
	textures texture.Source
	log      *slog.Logger
	maxDepth int
	diags    []Diagnostic
	ctx      context.Context
}

// NewEvaluator returns an evaluator for g. textures resolves texture identifiers of
// sampling nodes; nil only resolves the built-in checkerboard.
func NewEvaluator(g *Graph, textures texture.Source, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	e := &Evaluator{
		graph:    g,
		nodes:    make(map[string]*Node, len(g.Nodes)),
		textures: texture.WithCheckerboard(textures),
		log:      log,
		maxDepth: defaultMaxDepth,
		ctx:      context.Background(),
	}
	for _, n := range g.Nodes {
		if n != nil {
			e.nodes[n.ID] = n
		}
	}
	return e
}

// SetMaxDepth sets the maximum pin recursion depth. Values below 1 are ignored.
func (e *Evaluator) SetMaxDepth(depth int) {
	if depth > 0 {
		e.maxDepth = depth
	}
}

// Diagnostics returns the problems found so far.
func (e *Evaluator) Diagnostics() []Diagnostic { return e.diags }

func (e *Evaluator) diagf(kind DiagnosticKind, n *Node, format string, args ...any) {
	d := Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		d.NodeID = n.ID
	}
	e.diags = append(e.diags, d)
	e.log.Debug("material graph diagnostic", "kind", kind.String(), "node", d.NodeID, "msg", d.Message)
}

// Eval evaluates an input pin starting a new path.
func (e *Evaluator) Eval(pin *Pin) Value {
	return e.EvalPin(pin, nil)
}

// EvalPin resolves pin to a value by following its link to the producing node.
// It returns nil if pin is nil, already on the current path (a cycle), or nothing
// can be produced. Unconnected pins yield their default value.
func (e *Evaluator) EvalPin(pin *Pin, visited visitSet) Value {
	if pin == nil {
		return nil
	}
	if _, seen := visited[pin]; seen {
		e.diagf(DiagCycle, nil, "pin %q revisited on its own evaluation path", pin.ID)
		return nil
	}
	if len(visited) >= e.maxDepth {
		e.diagf(DiagDepth, nil, "pin %q exceeds max evaluation depth %d", pin.ID, e.maxDepth)
		return nil
	}
	if pin.Link == "" {
		return pin.Default
	}
	link := e.graph.Links[pin.Link]
	if link == nil {
		e.diagf(DiagBrokenLink, nil, "pin %q references missing link %q", pin.ID, pin.Link)
		return pin.Default
	}
	producer := e.nodes[link.FromNode]
	if producer == nil {
		e.diagf(DiagBrokenLink, nil, "link %q references missing node %q", link.ID, link.FromNode)
		return pin.Default
	}
	out := producer.OutputPin(link.FromPin)
	if out == nil {
		e.diagf(DiagBrokenLink, producer, "link %q references missing output pin %q", link.ID, link.FromPin)
		return pin.Default
	}
	return e.dispatch(producer, out, visited.with(pin))
}

// in evaluates the input of n identified by any of ids (pin ID or name).
func (e *Evaluator) in(n *Node, vs visitSet, ids ...string) Value {
	for _, id := range ids {
		if p := n.Input(id); p != nil {
			return e.EvalPin(p, vs)
		}
	}
	return nil
}

// inOrProp evaluates input pin id, falling back to the numeric property prop when
// the input yields nothing. Mirrors constant fallbacks such as ConstA on Add nodes.
func (e *Evaluator) inOrProp(n *Node, vs visitSet, id, prop string) Value {
	v := e.in(n, vs, id)
	if v != nil {
		return v
	}
	return propValue(n, prop)
}

func (e *Evaluator) scalarIn(n *Node, vs visitSet, id, prop string, def float32) float32 {
	return toScalar(e.inOrProp(n, vs, id, prop), def)
}
