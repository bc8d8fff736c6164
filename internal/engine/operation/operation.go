package operation

import (
	"fmt"

	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Kind identifies one of the closed set of operation kinds.
type Kind uint8

const (
	// KindInsertNode inserts a new node as a sibling at a path.
	KindInsertNode Kind = iota

	// KindRemoveNode deletes the node at a path.
	KindRemoveNode

	// KindMergeNode folds the node at a path into its previous sibling.
	KindMergeNode

	// KindSplitNode splits the node at a path into two siblings.
	KindSplitNode

	// KindMoveNode relocates the node at a path to a new path.
	KindMoveNode

	// KindInsertText inserts text inside a leaf.
	KindInsertText

	// KindRemoveText removes text inside a leaf.
	KindRemoveText

	// KindSetNode replaces properties on a node.
	KindSetNode

	// KindSetSelection replaces the document selection.
	KindSetSelection

	// KindUnknown carries a wire payload whose type this version does not
	// recognize. Unknown operations are never applied and leave every
	// location untouched.
	KindUnknown
)

// kindNames maps kinds to their wire names.
var kindNames = map[Kind]string{
	KindInsertNode:   "insert_node",
	KindRemoveNode:   "remove_node",
	KindMergeNode:    "merge_node",
	KindSplitNode:    "split_node",
	KindMoveNode:     "move_node",
	KindInsertText:   "insert_text",
	KindRemoveText:   "remove_text",
	KindSetNode:      "set_node",
	KindSetSelection: "set_selection",
}

// String returns the kind's wire name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Operation is one atomic edit of a document: a structural change
// (insert, remove, merge, split, or move a node), a text or property
// change, or a selection change. The set is sealed; exhaustive switches
// over it cover every possible edit.
type Operation interface {
	// Kind returns the operation's kind tag.
	Kind() Kind

	// sealed prevents operation kinds from being declared elsewhere.
	sealed()
}

// InsertNode records that Node was inserted at Path. Siblings at and
// after Path shift one position right.
type InsertNode struct {
	Path path.Path
	Node *node.Node
}

// RemoveNode records that the node at Path was deleted. Node captures
// the removed subtree for inversion.
type RemoveNode struct {
	Path path.Path
	Node *node.Node
}

// MergeNode records that the node at Path was folded into its previous
// sibling. Position is the size the sibling had before the merge (its
// child count, or text length for leaves): the offset at which the merged
// node's content begins inside the survivor. Props captures the removed
// node's properties for inversion.
type MergeNode struct {
	Path     path.Path
	Position int
	Props    node.Props
}

// SplitNode records that the node at Path was split at Position (a child
// index for elements, a character offset for leaves) into itself and a
// new following sibling. Props carries the properties given to the new
// right-hand node.
type SplitNode struct {
	Path     path.Path
	Position int
	Props    node.Props
}

// MoveNode records that the node at Path was relocated to NewPath, with
// NewPath expressed against the tree as it was before the node was
// removed from its old position.
type MoveNode struct {
	Path    path.Path
	NewPath path.Path
}

// InsertText records that Text was inserted at Offset inside the leaf at
// Path.
type InsertText struct {
	Path   path.Path
	Offset int
	Text   string
}

// RemoveText records that Text was removed from Offset inside the leaf at
// Path.
type RemoveText struct {
	Path   path.Path
	Offset int
	Text   string
}

// SetNode records a property change on the node at Path: the keys of
// Props were replaced by NewProps. A key mapped to nil records a removal.
type SetNode struct {
	Path     path.Path
	Props    node.Props
	NewProps node.Props
}

// SetSelection records a selection change from Before to After. A nil
// pointer on either side records that no selection existed there.
type SetSelection struct {
	Before *selection.Range
	After  *selection.Range
}

// Unknown preserves a wire payload whose type tag this version does not
// recognize. The payload rides along untouched so op logs survive version
// skew between peers.
type Unknown struct {
	Type string
	Raw  []byte
}

// Kind implementations.

func (InsertNode) Kind() Kind   { return KindInsertNode }
func (RemoveNode) Kind() Kind   { return KindRemoveNode }
func (MergeNode) Kind() Kind    { return KindMergeNode }
func (SplitNode) Kind() Kind    { return KindSplitNode }
func (MoveNode) Kind() Kind     { return KindMoveNode }
func (InsertText) Kind() Kind   { return KindInsertText }
func (RemoveText) Kind() Kind   { return KindRemoveText }
func (SetNode) Kind() Kind      { return KindSetNode }
func (SetSelection) Kind() Kind { return KindSetSelection }
func (Unknown) Kind() Kind      { return KindUnknown }

func (InsertNode) sealed()   {}
func (RemoveNode) sealed()   {}
func (MergeNode) sealed()    {}
func (SplitNode) sealed()    {}
func (MoveNode) sealed()     {}
func (InsertText) sealed()   {}
func (RemoveText) sealed()   {}
func (SetNode) sealed()      {}
func (SetSelection) sealed() {}
func (Unknown) sealed()      {}

// Describe returns a short human-readable form of the operation for logs
// and REPL output.
func Describe(op Operation) string {
	switch o := op.(type) {
	case InsertNode:
		return fmt.Sprintf("insert_node at %s", o.Path)
	case RemoveNode:
		return fmt.Sprintf("remove_node at %s", o.Path)
	case MergeNode:
		return fmt.Sprintf("merge_node at %s position %d", o.Path, o.Position)
	case SplitNode:
		return fmt.Sprintf("split_node at %s position %d", o.Path, o.Position)
	case MoveNode:
		return fmt.Sprintf("move_node %s -> %s", o.Path, o.NewPath)
	case InsertText:
		return fmt.Sprintf("insert_text at %s:%d %q", o.Path, o.Offset, o.Text)
	case RemoveText:
		return fmt.Sprintf("remove_text at %s:%d %q", o.Path, o.Offset, o.Text)
	case SetNode:
		return fmt.Sprintf("set_node at %s", o.Path)
	case SetSelection:
		return "set_selection"
	case Unknown:
		return fmt.Sprintf("unknown(%s)", o.Type)
	default:
		return "unknown"
	}
}
