// Package matdoc reads material graph documents. Documents are YAML, or JSON
// which is accepted as YAML, and describe nodes, their pins and the links between them.
//
//	nodes:
//	  - id: tint
//	    kind: Constant3Vector
//	    properties: {R: 1, G: 0.5, B: 0}
//	  - id: out
//	    kind: MaterialOutput
//	    output: true
//	    inputs: [{id: bc, name: Base Color}]
//	links:
//	  - {from: tint, to: out, to_pin: bc}
package matdoc

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/soypat/matgraph"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is a serialized material graph.
type Document struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Nodes []Node `yaml:"nodes" json:"nodes" validate:"required,min=1,dive"`
	Links []Link `yaml:"links,omitempty" json:"links,omitempty" validate:"dive"`
}

// Node is a serialized expression node. Nodes without declared outputs get a
// single output pin "out".
type Node struct {
	ID         string         `yaml:"id" json:"id" validate:"required"`
	Kind       string         `yaml:"kind" json:"kind" validate:"required"`
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
	Inputs     []Pin          `yaml:"inputs,omitempty" json:"inputs,omitempty" validate:"dive"`
	Outputs    []Pin          `yaml:"outputs,omitempty" json:"outputs,omitempty" validate:"dive"`
	Output     bool           `yaml:"output,omitempty" json:"output,omitempty"`
}

// Pin is a serialized pin. Name defaults to ID.
type Pin struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
	// Default is a number, a list of numbers or an R,G,B[,A] record.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
}

// Link connects an output pin to an input pin. An empty FromPin selects the
// producer's first output.
type Link struct {
	ID      string `yaml:"id,omitempty" json:"id,omitempty"`
	From    string `yaml:"from" json:"from" validate:"required"`
	FromPin string `yaml:"from_pin,omitempty" json:"from_pin,omitempty"`
	To      string `yaml:"to" json:"to" validate:"required"`
	ToPin   string `yaml:"to_pin" json:"to_pin" validate:"required"`
}

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("decoding material document: %w", err)
	}
	err = doc.Validate()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document structure and its references. All problems
// found are returned joined.
func (doc *Document) Validate() error {
	err := validate.Struct(doc)
	if err != nil {
		return err
	}
	var errs []error
	nodes := make(map[string]*Node, len(doc.Nodes))
	outputs := 0
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID))
		}
		nodes[n.ID] = n
		if n.Output {
			outputs++
		}
		for _, p := range n.Inputs {
			if p.Default == nil {
				continue
			}
			if _, ok := matgraph.ValueOf(p.Default); !ok {
				errs = append(errs, fmt.Errorf("node %q input %q: unsupported default %v", n.ID, p.ID, p.Default))
			}
		}
	}
	if outputs > 1 {
		errs = append(errs, fmt.Errorf("%d nodes flagged as output, want at most one", outputs))
	}
	linked := make(map[[2]string]bool)
	linkIDs := make(map[string]bool)
	for i, l := range doc.Links {
		if l.ID != "" {
			if linkIDs[l.ID] {
				errs = append(errs, fmt.Errorf("link %d: duplicate link id %q", i, l.ID))
			}
			linkIDs[l.ID] = true
		}
		from, to := nodes[l.From], nodes[l.To]
		switch {
		case from == nil:
			errs = append(errs, fmt.Errorf("link %d: unknown producer node %q", i, l.From))
		case l.FromPin != "" && len(from.Outputs) > 0 && !hasPin(from.Outputs, l.FromPin):
			errs = append(errs, fmt.Errorf("link %d: node %q has no output %q", i, l.From, l.FromPin))
		}
		switch {
		case to == nil:
			errs = append(errs, fmt.Errorf("link %d: unknown consumer node %q", i, l.To))
		case !hasPin(to.Inputs, l.ToPin):
			errs = append(errs, fmt.Errorf("link %d: node %q has no input %q", i, l.To, l.ToPin))
		case linked[[2]string{l.To, l.ToPin}]:
			errs = append(errs, fmt.Errorf("link %d: input %q of node %q already linked", i, l.ToPin, l.To))
		}
		linked[[2]string{l.To, l.ToPin}] = true
	}
	return errors.Join(errs...)
}

func hasPin(pins []Pin, id string) bool {
	for _, p := range pins {
		if p.ID == id || p.Name == id {
			return true
		}
	}
	return false
}

// Graph converts the document to an evaluable graph. The document must be valid.
func (doc *Document) Graph() (*matgraph.Graph, error) {
	g := &matgraph.Graph{
		Nodes: make([]*matgraph.Node, 0, len(doc.Nodes)),
		Links: make(map[string]*matgraph.Link, len(doc.Links)),
	}
	byID := make(map[string]*matgraph.Node, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		n := &matgraph.Node{
			ID:         dn.ID,
			Kind:       dn.Kind,
			Properties: dn.Properties,
			Inputs:     convertPins(dn.Inputs),
			Outputs:    convertPins(dn.Outputs),
			Output:     dn.Output,
		}
		if len(n.Outputs) == 0 && !dn.Output {
			n.Outputs = []*matgraph.Pin{{ID: "out", Name: "Out"}}
		}
		g.Nodes = append(g.Nodes, n)
		byID[n.ID] = n
	}
	for i, l := range doc.Links {
		from, to := byID[l.From], byID[l.To]
		if from == nil || to == nil {
			return nil, fmt.Errorf("link %d references unknown node", i)
		}
		fromPin := l.FromPin
		if fromPin == "" {
			if len(from.Outputs) == 0 {
				return nil, fmt.Errorf("link %d: node %q has no outputs", i, l.From)
			}
			fromPin = from.Outputs[0].ID
		}
		if from.OutputPin(fromPin) == nil || to.Input(l.ToPin) == nil {
			return nil, fmt.Errorf("link %d references unknown pin", i)
		}
		id := l.ID
		if id == "" {
			id = "link" + strconv.Itoa(i)
		}
		g.Connect(id, from, fromPin, to, l.ToPin)
	}
	return g, nil
}

func convertPins(pins []Pin) []*matgraph.Pin {
	if len(pins) == 0 {
		return nil
	}
	out := make([]*matgraph.Pin, len(pins))
	for i, p := range pins {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		def, _ := matgraph.ValueOf(p.Default)
		out[i] = &matgraph.Pin{ID: p.ID, Name: name, Type: matgraph.ParsePinType(p.Type), Default: def}
	}
	return out
}
