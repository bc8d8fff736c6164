package node

import (
	"fmt"
	"strings"

	"github.com/loomkit/loom/internal/engine/path"
)

// Get returns the node at p, walking down from root. The root path
// returns root itself.
func Get(root *Node, p path.Path) (*Node, error) {
	n := root
	for depth, idx := range p {
		if !n.IsElement() {
			return nil, fmt.Errorf("get %v: depth %d: %w", p, depth, ErrNotElement)
		}
		if idx < 0 || idx >= len(n.Children) {
			return nil, fmt.Errorf("get %v: index %d of %d children: %w", p, idx, len(n.Children), ErrNotFound)
		}
		n = n.Children[idx]
	}
	return n, nil
}

// Has reports whether a node exists at p.
func Has(root *Node, p path.Path) bool {
	_, err := Get(root, p)
	return err == nil
}

// Leaf returns the text leaf at p, failing with ErrNotText if the path
// names an element.
func Leaf(root *Node, p path.Path) (*Node, error) {
	n, err := Get(root, p)
	if err != nil {
		return nil, err
	}
	if !n.IsText() {
		return nil, fmt.Errorf("leaf %v: %w", p, ErrNotText)
	}
	return n, nil
}

// ParentOf returns the parent element of the node at p along with the
// node's index within it. It fails for the root path, which has no
// parent.
func ParentOf(root *Node, p path.Path) (*Node, int, error) {
	pp, err := path.Parent(p)
	if err != nil {
		return nil, 0, err
	}
	parent, err := Get(root, pp)
	if err != nil {
		return nil, 0, err
	}
	if !parent.IsElement() {
		return nil, 0, fmt.Errorf("parent of %v: %w", p, ErrNotElement)
	}
	idx := p[len(p)-1]
	if idx < 0 || idx >= len(parent.Children) {
		return nil, 0, fmt.Errorf("parent of %v: index %d of %d children: %w", p, idx, len(parent.Children), ErrNotFound)
	}
	return parent, idx, nil
}

// FirstLeaf returns the first text leaf in document order and its path,
// or nil if the tree has no leaves.
func FirstLeaf(root *Node) (*Node, path.Path) {
	return edgeLeaf(root, path.Root, false)
}

// LastLeaf returns the last text leaf in document order and its path,
// or nil if the tree has no leaves.
func LastLeaf(root *Node) (*Node, path.Path) {
	return edgeLeaf(root, path.Root, true)
}

func edgeLeaf(n *Node, p path.Path, last bool) (*Node, path.Path) {
	if n.IsText() {
		return n, p
	}
	indices := make([]int, len(n.Children))
	for i := range indices {
		indices[i] = i
	}
	if last {
		for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	for _, i := range indices {
		child := p.Clone()
		child = append(child, i)
		if leaf, lp := edgeLeaf(n.Children[i], child, last); leaf != nil {
			return leaf, lp
		}
	}
	return nil, nil
}

// Walk visits every node in document order, root first, calling fn with
// each node's path. Returning false from fn skips the node's children.
func Walk(root *Node, fn func(p path.Path, n *Node) bool) {
	walk(root, path.Root, fn)
}

func walk(n *Node, p path.Path, fn func(p path.Path, n *Node) bool) {
	if !fn(p, n) {
		return
	}
	for i, child := range n.Children {
		cp := p.Clone()
		cp = append(cp, i)
		walk(child, cp, fn)
	}
}

// PlainText concatenates the text of every leaf under n in document
// order. Sibling leaves are joined as-is; element boundaries insert
// nothing.
func PlainText(n *Node) string {
	var b strings.Builder
	Walk(n, func(_ path.Path, cur *Node) bool {
		if cur.IsText() {
			b.WriteString(cur.Text)
		}
		return true
	})
	return b.String()
}
