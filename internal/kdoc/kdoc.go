// Package kdoc is a read-only tree view over a parsed KDL document.
//
// Nodes carry a name, ordered positional arguments, named properties and
// ordered children. The tree is independent of the parser so the config
// resolver can be exercised with hand-built nodes.
package kdoc

import (
	"fmt"
	"io"

	"github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Kind classifies a scalar value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a positional argument or property value.
type Value struct {
	Raw any
}

// Kind reports the value's type. Any numeric representation is KindNumber.
func (v Value) Kind() Kind {
	switch v.Raw.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBool
	default:
		return KindNumber
	}
}

// AsString returns the value if it is a string.
func (v Value) AsString() (string, bool) {
	s, ok := v.Raw.(string)
	return s, ok
}

// Node is one element of the document tree.
type Node struct {
	Name     string
	Args     []Value
	Props    map[string]Value
	Children []*Node
}

// Document is the list of top-level nodes in file order.
type Document struct {
	Nodes []*Node
}

// First returns the first top-level node, or nil for an empty document.
func (d *Document) First() *Node {
	if d == nil || len(d.Nodes) == 0 {
		return nil
	}
	return d.Nodes[0]
}

// Child returns the first child named name. Later duplicates are ignored.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Prop returns the property named name.
func (n *Node) Prop(name string) (Value, bool) {
	if n == nil || n.Props == nil {
		return Value{}, false
	}
	v, ok := n.Props[name]
	return v, ok
}

// SingleString returns the node's argument when it has exactly one argument
// and that argument is a string.
func (n *Node) SingleString() (string, bool) {
	if n == nil || len(n.Args) != 1 {
		return "", false
	}
	return n.Args[0].AsString()
}

// Strings returns all arguments as strings. ok is false if any argument is
// not a string.
func (n *Node) Strings() ([]string, bool) {
	out := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		s, ok := a.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Parse reads a KDL document. Syntax errors are returned unchanged from the
// parser so callers can show its diagnostic.
func Parse(r io.Reader) (*Document, error) {
	doc, err := kdl.Parse(r)
	if err != nil {
		return nil, err
	}
	out := &Document{Nodes: make([]*Node, 0, len(doc.Nodes))}
	for _, n := range doc.Nodes {
		out.Nodes = append(out.Nodes, convert(n))
	}
	return out, nil
}

func convert(n *document.Node) *Node {
	node := &Node{Name: nodeName(n)}
	for _, a := range n.Arguments {
		node.Args = append(node.Args, value(a))
	}
	if len(n.Properties) > 0 {
		node.Props = make(map[string]Value, len(n.Properties))
		for k, v := range n.Properties {
			node.Props[k] = value(v)
		}
	}
	for _, c := range n.Children {
		node.Children = append(node.Children, convert(c))
	}
	return node
}

func nodeName(n *document.Node) string {
	if n.Name == nil {
		return ""
	}
	if s, ok := n.Name.Value.(string); ok {
		return s
	}
	return fmt.Sprint(n.Name.Value)
}

func value(v *document.Value) Value {
	if v == nil {
		return Value{}
	}
	return Value{Raw: v.Value}
}
