package node

import "fmt"

// Kind discriminates element nodes from text leaves.
type Kind uint8

const (
	// Element is an interior node holding an ordered list of children.
	Element Kind = iota

	// Text is a leaf node holding a run of text.
	Text
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Element:
		return "element"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Props is the open property map carried by every node. The structural
// algebra never interprets it; editors use it for formatting marks and
// application metadata.
type Props map[string]any

// Clone returns an independent shallow copy of the property map.
// Property values are treated as immutable by convention.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	c := make(Props, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Node is a single node in a document tree: either an element with
// children or a text leaf. A document is a root element whose descendants
// are addressed by index paths.
type Node struct {
	// Kind tells whether this node is an Element or a Text leaf.
	Kind Kind

	// Type is the element kind, such as "paragraph" or "list-item".
	// It is empty for text leaves.
	Type string

	// Text is the content of a text leaf. It is empty for elements.
	Text string

	// Children are the ordered child nodes of an element. It is nil for
	// text leaves.
	Children []*Node

	// Props holds open formatting and metadata properties.
	Props Props
}

// NewElement creates an element node of the given type with the given
// children.
func NewElement(typ string, children ...*Node) *Node {
	return &Node{Kind: Element, Type: typ, Children: children}
}

// NewText creates a text leaf with the given content.
func NewText(text string) *Node {
	return &Node{Kind: Text, Text: text}
}

// IsText returns true for text leaves.
func (n *Node) IsText() bool {
	return n.Kind == Text
}

// IsElement returns true for element nodes.
func (n *Node) IsElement() bool {
	return n.Kind == Element
}

// Clone returns a deep copy of the node and all its descendants.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind:  n.Kind,
		Type:  n.Type,
		Text:  n.Text,
		Props: n.Props.Clone(),
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// String returns a short debug form: text leaves render their content,
// elements their type and child count.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsText() {
		return fmt.Sprintf("text(%q)", n.Text)
	}
	return fmt.Sprintf("%s(%d)", n.Type, len(n.Children))
}
