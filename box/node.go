package box

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Node is the debug export of a box: a named element with attributes and
// child elements. It carries no information needed for binary round trips.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Node
}

// newNode starts the export of a box of type t.
func newNode(name string, t Type) *Node {
	n := &Node{Name: name}
	return n.Attr("type", t.String())
}

// Attr appends an attribute formatted with %v and returns n.
func (n *Node) Attr(name string, value any) *Node {
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: fmt.Sprint(value)})
	return n
}

// Add appends child nodes and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Get returns the value of the named attribute.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// MarshalXML encodes n as an element named after the box variant.
func (n *Node) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}, Attr: n.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := e.Encode(c); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// DumpXML writes the debug export of boxes as indented XML.
func DumpXML(w io.Writer, boxes ...Box) error {
	root := &Node{Name: "boxes"}
	for _, b := range boxes {
		root.Add(b.Describe())
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
