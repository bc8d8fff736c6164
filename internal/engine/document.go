package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomkit/loom/internal/engine/history"
	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/refs"
	"github.com/loomkit/loom/internal/engine/selection"
	"github.com/loomkit/loom/internal/event"
)

// Re-export commonly used types for convenience.
type (
	// Path addresses a node in the document tree.
	Path = path.Path

	// Affinity picks a side when a location lands on a split boundary.
	Affinity = path.Affinity

	// Point is a path plus a character offset inside its leaf.
	Point = selection.Point

	// Range is a pair of points spanning part of the document.
	Range = selection.Range

	// Operation is one atomic document edit.
	Operation = operation.Operation

	// Node is one tree node, element or leaf.
	Node = node.Node

	// Props is an open property map on a node.
	Props = node.Props
)

// Re-export constants.
const (
	Forward  = path.Forward
	Backward = path.Backward
	None     = path.None

	RangeInward  = operation.RangeInward
	RangeOutward = operation.RangeOutward
)

// Document is the main facade for the tree-document engine. It combines
// the document tree, selection, live refs, undo/redo, and change
// notification into a unified, thread-safe API.
//
// All operations are thread-safe and can be called from multiple
// goroutines.
type Document struct {
	mu sync.RWMutex

	// Core components
	root     *node.Node
	sel      *selection.Range
	registry *refs.Registry
	history  *history.History
	feed     *event.Feed

	// State
	id       string
	revision uint64
	closed   bool

	// Configuration
	maxUndoEntries int
	feedBuffer     int
	readOnly       bool

	// Initialization
	initRoot *node.Node
	initSel  *selection.Range
}

// New creates a new Document with the given options.
func New(opts ...Option) *Document {
	d := &Document{
		maxUndoEntries: DefaultMaxUndoEntries,
		feedBuffer:     DefaultFeedBuffer,
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(d)
	}

	if d.id == "" {
		d.id = uuid.New().String()
	}
	if d.initRoot != nil {
		d.root = d.initRoot.Clone()
	} else {
		d.root = node.NewElement("doc")
	}
	if d.initSel != nil {
		sel := d.initSel.Clone()
		d.sel = &sel
	}

	d.registry = refs.NewRegistry()
	d.history = history.New(d.maxUndoEntries)
	d.feed = event.NewFeed(d.feedBuffer)

	return d
}

// ============================================================================
// Read Operations
// ============================================================================

// ID returns the document's identifier.
func (d *Document) ID() string {
	return d.id
}

// Root returns a deep copy of the document tree. Mutating the copy has no
// effect on the document.
func (d *Document) Root() *node.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root.Clone()
}

// NodeAt returns a deep copy of the node at p.
func (d *Document) NodeAt(p path.Path) (*node.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, err := node.Get(d.root, p)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// Has reports whether a node exists at p.
func (d *Document) Has(p path.Path) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return node.Has(d.root, p)
}

// PlainText returns the concatenated text of every leaf in document
// order.
func (d *Document) PlainText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return node.PlainText(d.root)
}

// Revision returns the number of operations applied so far.
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Selection returns the current selection and whether one exists.
func (d *Document) Selection() (selection.Range, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.sel == nil {
		return selection.Range{}, false
	}
	return d.sel.Clone(), true
}

// JSON returns the document tree serialized as JSON.
func (d *Document) JSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.Marshal(d.root)
}

// IsReadOnly returns true if the document is read-only.
func (d *Document) IsReadOnly() bool {
	return d.readOnly
}

// ============================================================================
// Applying Operations
// ============================================================================

// Apply performs one operation against the document: it mutates the
// tree, rebases the selection and every live ref, records the operation
// for undo, bumps the revision, and publishes a change event.
//
// The operation is validated against the live tree; nothing changes when
// an error is returned.
func (d *Document) Apply(op operation.Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(op, event.OriginLocal, true)
}

// ApplyRemote performs an operation that arrived from another replica.
// It runs the same pipeline as Apply but does not record undo history:
// remote edits are not undoable locally. Origin identifies the sender
// and is carried on the published change event.
func (d *Document) ApplyRemote(op operation.Operation, origin string) error {
	if origin == "" {
		origin = "remote"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(op, origin, false)
}

// applyLocked runs the apply pipeline without acquiring the lock.
func (d *Document) applyLocked(op operation.Operation, origin string, record bool) error {
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}

	enriched, err := d.applyToTree(op)
	if err != nil {
		return err
	}

	// Selection: a set_selection replaces it outright, capturing the
	// previous value for inversion; every other operation rebases it.
	// A selection whose ground was deleted drops to none.
	if ss, ok := enriched.(operation.SetSelection); ok {
		if ss.Before == nil && d.sel != nil {
			before := d.sel.Clone()
			ss.Before = &before
		}
		if ss.After != nil {
			after := ss.After.Clone()
			d.sel = &after
		} else {
			d.sel = nil
		}
		enriched = ss
	} else if d.sel != nil {
		if moved, ok := operation.TransformRange(*d.sel, enriched); ok {
			d.sel = &moved
		} else {
			d.sel = nil
		}
	}

	d.registry.Apply(enriched)

	// Unknown operations carry foreign payloads that cannot be inverted,
	// so they never enter undo history.
	if record && enriched.Kind() != operation.KindUnknown {
		d.history.Record(enriched)
	}

	d.revision++
	d.feed.Publish(event.Change{
		Doc:      d.id,
		Revision: d.revision,
		Op:       enriched,
		Origin:   origin,
		At:       time.Now(),
	})
	return nil
}

// ============================================================================
// Edit Helpers
// ============================================================================

// InsertNodeAt inserts n at p, shifting following siblings right.
func (d *Document) InsertNodeAt(p path.Path, n *node.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.InsertNode{Path: p, Node: n}, event.OriginLocal, true)
}

// RemoveNodeAt removes the node at p.
func (d *Document) RemoveNodeAt(p path.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.RemoveNode{Path: p}, event.OriginLocal, true)
}

// InsertTextAt inserts text at the character offset inside the leaf at p.
func (d *Document) InsertTextAt(p path.Path, offset int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.InsertText{Path: p, Offset: offset, Text: text}, event.OriginLocal, true)
}

// RemoveTextAt removes length characters starting at offset inside the
// leaf at p.
func (d *Document) RemoveTextAt(p path.Path, offset, length int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	leaf, err := node.Leaf(d.root, p)
	if err != nil {
		return fmt.Errorf("remove_text at %s: %w", p, err)
	}
	runes := []rune(leaf.Text)
	if offset < 0 || length < 0 || offset+length > len(runes) {
		return fmt.Errorf("remove_text at %s: offset %d length %d of %d: %w",
			p, offset, length, len(runes), ErrOffsetOutOfRange)
	}
	op := operation.RemoveText{Path: p, Offset: offset, Text: string(runes[offset : offset+length])}
	return d.applyLocked(op, event.OriginLocal, true)
}

// SplitNodeAt splits the node at p into two siblings at position: a
// character offset for leaves, a child index for elements. The new right
// sibling inherits the node's type and properties.
func (d *Document) SplitNodeAt(p path.Path, position int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	n, err := node.Get(d.root, p)
	if err != nil {
		return fmt.Errorf("split_node at %s: %w", p, err)
	}
	op := operation.SplitNode{Path: p, Position: position, Props: captureProps(n)}
	return d.applyLocked(op, event.OriginLocal, true)
}

// MergeNodeAt folds the node at p into its previous sibling. Both must
// be leaves or both elements.
func (d *Document) MergeNodeAt(p path.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	prevPath, err := path.Previous(p)
	if err != nil {
		return fmt.Errorf("merge_node at %s: %w", p, err)
	}
	prev, err := node.Get(d.root, prevPath)
	if err != nil {
		return fmt.Errorf("merge_node at %s: %w", p, err)
	}
	position := len(prev.Children)
	if prev.IsText() {
		position = len([]rune(prev.Text))
	}
	op := operation.MergeNode{Path: p, Position: position}
	return d.applyLocked(op, event.OriginLocal, true)
}

// MoveNodeTo relocates the node at p to newPath, with newPath expressed
// against the tree before the node is detached.
func (d *Document) MoveNodeTo(p, newPath path.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.MoveNode{Path: p, NewPath: newPath}, event.OriginLocal, true)
}

// SetNodeAt replaces properties on the node at p. The reserved "type"
// key renames the node's type; a nil value removes the key.
func (d *Document) SetNodeAt(p path.Path, props node.Props) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.SetNode{Path: p, NewProps: props}, event.OriginLocal, true)
}

// Select replaces the document selection.
func (d *Document) Select(r selection.Range) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	after := r.Clone()
	return d.applyLocked(operation.SetSelection{After: &after}, event.OriginLocal, true)
}

// Deselect clears the document selection.
func (d *Document) Deselect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyLocked(operation.SetSelection{}, event.OriginLocal, true)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverses the most recent batch of operations by applying their
// inverses through the regular pipeline, so selection, refs, and
// subscribers all observe the reversal.
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}

	inverses, err := d.history.Undo()
	if err != nil {
		return err
	}
	// Inverses of operations recorded against a consistent tree always
	// apply; a failure here means the tree was mutated out of band.
	for _, op := range inverses {
		if err := d.applyLocked(op, event.OriginUndo, false); err != nil {
			return fmt.Errorf("undo %s: %w", operation.Describe(op), err)
		}
	}
	return nil
}

// Redo re-applies the most recently undone batch.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.readOnly {
		return ErrReadOnly
	}

	ops, err := d.history.Redo()
	if err != nil {
		return err
	}
	for _, op := range ops {
		if err := d.applyLocked(op, event.OriginRedo, false); err != nil {
			return fmt.Errorf("redo %s: %w", operation.Describe(op), err)
		}
	}
	return nil
}

// CanUndo returns true if undo is available.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

// UndoCount returns the number of available undo batches.
func (d *Document) UndoCount() int {
	return d.history.UndoCount()
}

// RedoCount returns the number of available redo batches.
func (d *Document) RedoCount() int {
	return d.history.RedoCount()
}

// BeginUndoGroup starts a new undo group. All operations until
// EndUndoGroup will be undone as a single unit.
func (d *Document) BeginUndoGroup(name string) {
	d.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (d *Document) EndUndoGroup() {
	d.history.EndGroup()
}

// CancelUndoGroup ends the current undo group without recording it.
func (d *Document) CancelUndoGroup() {
	d.history.CancelGroup()
}

// ClearHistory removes all undo/redo history.
func (d *Document) ClearHistory() {
	d.history.Clear()
}

// ============================================================================
// Live References
// ============================================================================

// TrackPath registers a ref that follows the node at p across every
// applied operation until unreffed.
func (d *Document) TrackPath(p path.Path, affinity path.Affinity) *refs.PathRef {
	return d.registry.TrackPath(p, affinity)
}

// TrackPoint registers a ref that follows a text position.
func (d *Document) TrackPoint(pt selection.Point, affinity path.Affinity) *refs.PointRef {
	return d.registry.TrackPoint(pt, affinity)
}

// TrackRange registers a ref that follows a range.
func (d *Document) TrackRange(r selection.Range, affinity operation.RangeAffinity) *refs.RangeRef {
	return d.registry.TrackRange(r, affinity)
}

// RefCount returns the number of live refs.
func (d *Document) RefCount() int {
	return d.registry.Len()
}

// ============================================================================
// Change Subscription
// ============================================================================

// Subscribe returns a subscription delivering every change applied to
// the document. Slow subscribers drop changes rather than block editing.
func (d *Document) Subscribe() *event.Subscription {
	return d.feed.Subscribe()
}

// Published returns the number of change events delivered to at least
// one subscriber.
func (d *Document) Published() uint64 {
	return d.feed.Published()
}

// Close releases the document's change feed. Further writes return
// ErrClosed; reads keep working.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.feed.Close()
}
