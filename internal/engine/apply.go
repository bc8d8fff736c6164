package engine

import (
	"fmt"

	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
)

// applyToTree mutates the document tree according to op, validating paths
// and offsets against the live content. It returns the operation enriched
// with any captured state (the removed node, merged-away properties) so
// history can invert it later. The caller holds the write lock.
func (d *Document) applyToTree(op operation.Operation) (operation.Operation, error) {
	switch o := op.(type) {
	case operation.InsertNode:
		return op, d.applyInsertNode(o)
	case operation.RemoveNode:
		return d.applyRemoveNode(o)
	case operation.MergeNode:
		return d.applyMergeNode(o)
	case operation.SplitNode:
		return op, d.applySplitNode(o)
	case operation.MoveNode:
		return op, d.applyMoveNode(o)
	case operation.InsertText:
		return op, d.applyInsertText(o)
	case operation.RemoveText:
		return d.applyRemoveText(o)
	case operation.SetNode:
		return d.applySetNode(o)
	case operation.SetSelection:
		// Selection state is handled by the apply pipeline itself.
		return op, nil
	default:
		// Unknown operations are carried but never applied.
		return op, nil
	}
}

func (d *Document) applyInsertNode(o operation.InsertNode) error {
	if o.Node == nil {
		return fmt.Errorf("insert_node at %s: no node: %w", o.Path, ErrInvalidOperation)
	}
	parent, idx, err := splicePoint(d.root, o.Path)
	if err != nil {
		return fmt.Errorf("insert_node at %s: %w", o.Path, err)
	}
	if idx > len(parent.Children) {
		return fmt.Errorf("insert_node at %s: index %d of %d children: %w",
			o.Path, idx, len(parent.Children), ErrInvalidOperation)
	}
	children := make([]*node.Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:idx]...)
	children = append(children, o.Node.Clone())
	children = append(children, parent.Children[idx:]...)
	parent.Children = children
	return nil
}

func (d *Document) applyRemoveNode(o operation.RemoveNode) (operation.Operation, error) {
	parent, idx, err := node.ParentOf(d.root, o.Path)
	if err != nil {
		return o, fmt.Errorf("remove_node at %s: %w", o.Path, err)
	}
	removed := parent.Children[idx]
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	// Capture the removed node so the operation can be inverted.
	if o.Node == nil {
		o.Node = removed
	}
	return o, nil
}

func (d *Document) applyMergeNode(o operation.MergeNode) (operation.Operation, error) {
	parent, idx, err := node.ParentOf(d.root, o.Path)
	if err != nil {
		return o, fmt.Errorf("merge_node at %s: %w", o.Path, err)
	}
	if idx == 0 {
		return o, fmt.Errorf("merge_node at %s: no previous sibling: %w", o.Path, ErrInvalidOperation)
	}
	n := parent.Children[idx]
	prev := parent.Children[idx-1]

	switch {
	case n.IsText() && prev.IsText():
		prev.Text += n.Text
	case n.IsElement() && prev.IsElement():
		prev.Children = append(prev.Children, n.Children...)
	default:
		return o, fmt.Errorf("merge_node at %s: cannot merge %s into %s: %w",
			o.Path, n.Kind, prev.Kind, ErrInvalidOperation)
	}
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	// Capture the merged-away node's identity for the inverse split.
	if o.Props == nil {
		o.Props = captureProps(n)
	}
	return o, nil
}

func (d *Document) applySplitNode(o operation.SplitNode) error {
	parent, idx, err := node.ParentOf(d.root, o.Path)
	if err != nil {
		return fmt.Errorf("split_node at %s: %w", o.Path, err)
	}
	n := parent.Children[idx]

	created := &node.Node{Kind: n.Kind, Type: n.Type}
	applyProps(created, o.Props)

	if n.IsText() {
		runes := []rune(n.Text)
		if o.Position < 0 || o.Position > len(runes) {
			return fmt.Errorf("split_node at %s: position %d of %d: %w",
				o.Path, o.Position, len(runes), ErrOffsetOutOfRange)
		}
		created.Text = string(runes[o.Position:])
		n.Text = string(runes[:o.Position])
	} else {
		if o.Position < 0 || o.Position > len(n.Children) {
			return fmt.Errorf("split_node at %s: position %d of %d children: %w",
				o.Path, o.Position, len(n.Children), ErrOffsetOutOfRange)
		}
		created.Children = append([]*node.Node{}, n.Children[o.Position:]...)
		n.Children = n.Children[:o.Position:o.Position]
	}

	children := make([]*node.Node, 0, len(parent.Children)+1)
	children = append(children, parent.Children[:idx+1]...)
	children = append(children, created)
	children = append(children, parent.Children[idx+1:]...)
	parent.Children = children
	return nil
}

func (d *Document) applyMoveNode(o operation.MoveNode) error {
	if path.IsAncestor(o.Path, o.NewPath) {
		return fmt.Errorf("move_node %s -> %s: %w", o.Path, o.NewPath, ErrMoveIntoSelf)
	}
	parent, idx, err := node.ParentOf(d.root, o.Path)
	if err != nil {
		return fmt.Errorf("move_node at %s: %w", o.Path, err)
	}
	moved := parent.Children[idx]
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	// The destination is expressed against the tree before the removal,
	// so rebase the landing site through the operation itself.
	landing, ok := operation.TransformPath(o.Path, o)
	if !ok {
		return fmt.Errorf("move_node %s -> %s: %w", o.Path, o.NewPath, ErrInvalidOperation)
	}
	dest, dIdx, err := splicePoint(d.root, landing)
	if err != nil {
		return fmt.Errorf("move_node %s -> %s: destination: %w", o.Path, o.NewPath, err)
	}
	if dIdx > len(dest.Children) {
		return fmt.Errorf("move_node %s -> %s: index %d of %d children: %w",
			o.Path, o.NewPath, dIdx, len(dest.Children), ErrInvalidOperation)
	}
	children := make([]*node.Node, 0, len(dest.Children)+1)
	children = append(children, dest.Children[:dIdx]...)
	children = append(children, moved)
	children = append(children, dest.Children[dIdx:]...)
	dest.Children = children
	return nil
}

func (d *Document) applyInsertText(o operation.InsertText) error {
	leaf, err := node.Leaf(d.root, o.Path)
	if err != nil {
		return fmt.Errorf("insert_text at %s: %w", o.Path, err)
	}
	runes := []rune(leaf.Text)
	if o.Offset < 0 || o.Offset > len(runes) {
		return fmt.Errorf("insert_text at %s: offset %d of %d: %w",
			o.Path, o.Offset, len(runes), ErrOffsetOutOfRange)
	}
	leaf.Text = string(runes[:o.Offset]) + o.Text + string(runes[o.Offset:])
	return nil
}

func (d *Document) applyRemoveText(o operation.RemoveText) (operation.Operation, error) {
	leaf, err := node.Leaf(d.root, o.Path)
	if err != nil {
		return o, fmt.Errorf("remove_text at %s: %w", o.Path, err)
	}
	runes := []rune(leaf.Text)
	n := len([]rune(o.Text))
	if o.Offset < 0 || o.Offset+n > len(runes) {
		return o, fmt.Errorf("remove_text at %s: offset %d length %d of %d: %w",
			o.Path, o.Offset, n, len(runes), ErrOffsetOutOfRange)
	}

	// Capture the actual removed run so the inverse restores it even
	// when the wire payload disagrees with the live text.
	o.Text = string(runes[o.Offset : o.Offset+n])
	leaf.Text = string(runes[:o.Offset]) + string(runes[o.Offset+n:])
	return o, nil
}

func (d *Document) applySetNode(o operation.SetNode) (operation.Operation, error) {
	n, err := node.Get(d.root, o.Path)
	if err != nil {
		return o, fmt.Errorf("set_node at %s: %w", o.Path, err)
	}

	// Capture the previous values of every touched key for inversion.
	if o.Props == nil {
		prev := node.Props{}
		for k := range o.NewProps {
			if k == "type" {
				prev[k] = n.Type
				continue
			}
			if v, ok := n.Props[k]; ok {
				prev[k] = v
			} else {
				prev[k] = nil
			}
		}
		o.Props = prev
	}

	applyProps(n, o.NewProps)

	// Keys present before but absent from the new properties are cleared.
	for k := range o.Props {
		if _, ok := o.NewProps[k]; !ok && k != "type" {
			delete(n.Props, k)
		}
	}
	return o, nil
}

// splicePoint resolves the parent element and child index named by p,
// for inserting at p. Unlike node.ParentOf it allows the index one past
// the end, the append position.
func splicePoint(root *node.Node, p path.Path) (*node.Node, int, error) {
	pp, err := path.Parent(p)
	if err != nil {
		return nil, 0, err
	}
	parent, err := node.Get(root, pp)
	if err != nil {
		return nil, 0, err
	}
	if !parent.IsElement() {
		return nil, 0, fmt.Errorf("%v: %w", pp, node.ErrNotElement)
	}
	return parent, p[len(p)-1], nil
}

// applyProps writes an operation's property map onto a node, routing the
// reserved "type" key to the Type field. A nil value removes the key.
func applyProps(n *node.Node, props node.Props) {
	for k, v := range props {
		if k == "type" {
			if s, ok := v.(string); ok {
				n.Type = s
			}
			continue
		}
		if v == nil {
			delete(n.Props, k)
			continue
		}
		if n.Props == nil {
			n.Props = node.Props{}
		}
		n.Props[k] = v
	}
}

// captureProps snapshots a node's identity as an operation property map:
// its open props plus the reserved "type" key for elements.
func captureProps(n *node.Node) node.Props {
	props := n.Props.Clone()
	if n.IsElement() && n.Type != "" {
		if props == nil {
			props = node.Props{}
		}
		props["type"] = n.Type
	}
	if props == nil {
		props = node.Props{}
	}
	return props
}
