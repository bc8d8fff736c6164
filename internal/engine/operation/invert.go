package operation

import (
	"errors"
	"fmt"

	"github.com/loomkit/loom/internal/engine/path"
)

// Invert returns the operation that exactly undoes op: applying op and
// then its inverse leaves a document unchanged. History replays inverses
// in reverse order to implement undo.
func Invert(op Operation) (Operation, error) {
	switch o := op.(type) {
	case InsertNode:
		return RemoveNode{Path: o.Path, Node: o.Node}, nil

	case RemoveNode:
		return InsertNode{Path: o.Path, Node: o.Node}, nil

	case InsertText:
		return RemoveText{Path: o.Path, Offset: o.Offset, Text: o.Text}, nil

	case RemoveText:
		return InsertText{Path: o.Path, Offset: o.Offset, Text: o.Text}, nil

	case MergeNode:
		// Undoing a merge splits the survivor back apart at the seam.
		prev, err := path.Previous(o.Path)
		if err != nil {
			return nil, fmt.Errorf("invert %s: %w", Describe(op), errors.Join(ErrCannotInvert, err))
		}
		return SplitNode{Path: prev, Position: o.Position, Props: o.Props}, nil

	case SplitNode:
		// Undoing a split merges the new right-hand sibling back in.
		next, err := path.Next(o.Path)
		if err != nil {
			return nil, fmt.Errorf("invert %s: %w", Describe(op), errors.Join(ErrCannotInvert, err))
		}
		return MergeNode{Path: next, Position: o.Position, Props: o.Props}, nil

	case MoveNode:
		if path.Equals(o.NewPath, o.Path) {
			return op, nil
		}
		if path.IsSibling(o.Path, o.NewPath) {
			return MoveNode{Path: o.NewPath, NewPath: o.Path}, nil
		}
		// The move itself shifted both endpoints: the node now lives at
		// the transformed source, and moving it back targets the slot a
		// following sibling would occupy after the move.
		invPath, ok := TransformPath(o.Path, op)
		if !ok {
			return nil, fmt.Errorf("invert %s: source: %w", Describe(op), ErrCannotInvert)
		}
		next, err := path.Next(o.Path)
		if err != nil {
			return nil, fmt.Errorf("invert %s: %w", Describe(op), errors.Join(ErrCannotInvert, err))
		}
		invNewPath, ok := TransformPath(next, op)
		if !ok {
			return nil, fmt.Errorf("invert %s: destination: %w", Describe(op), ErrCannotInvert)
		}
		return MoveNode{Path: invPath, NewPath: invNewPath}, nil

	case SetNode:
		return SetNode{Path: o.Path, Props: o.NewProps, NewProps: o.Props}, nil

	case SetSelection:
		return SetSelection{Before: o.After, After: o.Before}, nil

	case Unknown:
		return nil, fmt.Errorf("invert unknown operation %q: %w", o.Type, ErrCannotInvert)

	default:
		return nil, fmt.Errorf("invert %T: %w", op, ErrCannotInvert)
	}
}
