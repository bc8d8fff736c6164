package operation

import (
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// TransformPath rebases p to account for op having been applied to the
// document, using Forward affinity for split boundaries. The second
// result is false exactly when the node p referred to was structurally
// deleted; the path result is nil in that case. The input is never
// mutated: a surviving path comes back as a fresh value.
func TransformPath(p path.Path, op Operation) (path.Path, bool) {
	return TransformPathWithAffinity(p, op, path.Forward)
}

// TransformPathWithAffinity is TransformPath with an explicit affinity
// for paths that land exactly on a split point: Forward names the new
// right-hand sibling, Backward stays on the original node, and None
// reports the path as no longer resolvable.
//
// The branch structure below replicates the reference algebra exactly,
// including behavior its authors flagged as unverified for some nested
// merge and move interactions; those cases are pinned by regression
// tests rather than reinterpreted. See DESIGN.md.
func TransformPathWithAffinity(p path.Path, op Operation, affinity path.Affinity) (path.Path, bool) {
	// The root is never affected by any operation.
	if len(p) == 0 {
		return p.Clone(), true
	}

	out := p.Clone()

	switch o := op.(type) {
	case InsertNode:
		op := o.Path
		if path.Equals(op, out) || path.EndsBefore(op, out) || path.IsAncestor(op, out) {
			// A new preceding sibling shifts p right at the insert depth.
			out[len(op)-1]++
		}

	case RemoveNode:
		op := o.Path
		if path.Equals(op, out) || path.IsAncestor(op, out) {
			// The node itself or one of its ancestors is gone.
			return nil, false
		}
		if path.EndsBefore(op, out) {
			out[len(op)-1]--
		}

	case MergeNode:
		op := o.Path
		if path.Equals(op, out) || path.EndsBefore(op, out) {
			// Two siblings became one; later siblings shift left.
			out[len(op)-1]--
		} else if path.IsAncestor(op, out) {
			// The descendant keeps its subtree position inside the
			// survivor, offset by the children the survivor already had.
			out[len(op)-1]--
			out[len(op)] += o.Position
		}

	case SplitNode:
		op := o.Path
		if path.Equals(op, out) {
			switch affinity {
			case path.Forward:
				out[len(out)-1]++
			case path.Backward:
				// Still names the original left-hand node.
			case path.None:
				return nil, false
			}
		} else if path.EndsBefore(op, out) {
			out[len(op)-1]++
		} else if path.IsAncestor(op, out) && p[len(op)] >= o.Position {
			// The descendant moved into the new right-hand node, whose
			// children are renumbered from zero.
			out[len(op)-1]++
			out[len(op)] -= o.Position
		}

	case MoveNode:
		op, onp := o.Path, o.NewPath

		// Moving a node onto itself changes nothing anywhere.
		if path.Equals(op, onp) {
			return out, true
		}

		if path.IsAncestor(op, out) || path.Equals(op, out) {
			// p rides along with the moved subtree: the destination
			// prefix replaces the source prefix, keeping p's own suffix.
			dest := onp.Clone()
			if path.EndsBefore(op, onp) && len(op) < len(onp) {
				dest[len(op)-1]--
			}
			moved := make(path.Path, 0, len(dest)+len(out)-len(op))
			moved = append(moved, dest...)
			moved = append(moved, out[len(op):]...)
			return moved, true
		}

		if path.EndsBefore(onp, out) || path.Equals(onp, out) || path.IsAncestor(onp, out) {
			// The destination sits at or before p: account for the
			// removal, then for the insertion.
			if path.EndsBefore(op, out) {
				out[len(op)-1]--
			}
			out[len(onp)-1]++
		} else if path.EndsBefore(op, out) {
			if path.Equals(onp, out) {
				out[len(onp)-1]++
			}
			out[len(op)-1]--
		}

	default:
		// Text, property, selection, and unknown operations never move
		// nodes; every path passes through unchanged.
	}

	return out, true
}

// CanAffectPath reports whether an operation kind is capable of changing
// any path at all. Only the five structural kinds are; callers rebasing
// many stored locations use this to skip text and metadata operations
// outright.
func CanAffectPath(op Operation) bool {
	switch op.Kind() {
	case KindInsertNode, KindRemoveNode, KindMergeNode, KindSplitNode, KindMoveNode:
		return true
	default:
		return false
	}
}

// TransformPoint rebases a point across op with Forward affinity.
func TransformPoint(pt selection.Point, op Operation) (selection.Point, bool) {
	return TransformPointWithAffinity(pt, op, path.Forward)
}

// TransformPointWithAffinity rebases a point across op. Structural
// operations delegate to the path transform; text operations shift the
// offset; merges and splits combine both. The second result is false when
// the point's leaf was deleted, or when the point sat exactly on a split
// boundary and affinity None declined to pick a side.
func TransformPointWithAffinity(pt selection.Point, op Operation, affinity path.Affinity) (selection.Point, bool) {
	out := pt.Clone()

	switch o := op.(type) {
	case InsertNode, MoveNode:
		np, ok := TransformPathWithAffinity(out.Path, op, affinity)
		if !ok {
			return selection.Point{}, false
		}
		out.Path = np

	case RemoveNode:
		if path.Equals(o.Path, out.Path) || path.IsAncestor(o.Path, out.Path) {
			return selection.Point{}, false
		}
		np, ok := TransformPathWithAffinity(out.Path, op, affinity)
		if !ok {
			return selection.Point{}, false
		}
		out.Path = np

	case InsertText:
		if path.Equals(o.Path, out.Path) &&
			(o.Offset < out.Offset || (o.Offset == out.Offset && affinity == path.Forward)) {
			out.Offset += len([]rune(o.Text))
		}

	case RemoveText:
		if path.Equals(o.Path, out.Path) && o.Offset <= out.Offset {
			removed := len([]rune(o.Text))
			if over := out.Offset - o.Offset; over < removed {
				removed = over
			}
			out.Offset -= removed
		}

	case MergeNode:
		if path.Equals(o.Path, out.Path) {
			out.Offset += o.Position
		}
		np, ok := TransformPathWithAffinity(out.Path, op, affinity)
		if !ok {
			return selection.Point{}, false
		}
		out.Path = np

	case SplitNode:
		if path.Equals(o.Path, out.Path) {
			if o.Position == out.Offset && affinity == path.None {
				return selection.Point{}, false
			}
			if o.Position < out.Offset || (o.Position == out.Offset && affinity == path.Forward) {
				out.Offset -= o.Position
				np, ok := TransformPathWithAffinity(out.Path, op, path.Forward)
				if !ok {
					return selection.Point{}, false
				}
				out.Path = np
			}
		} else {
			np, ok := TransformPathWithAffinity(out.Path, op, affinity)
			if !ok {
				return selection.Point{}, false
			}
			out.Path = np
		}

	default:
		// SetNode, SetSelection, and Unknown leave every point in place.
	}

	return out, true
}

// RangeAffinity controls how the two ends of a range behave when an edit
// lands exactly on one of them.
type RangeAffinity int

const (
	// RangeInward pulls both ends toward the range interior, so the
	// selection tends to shrink rather than swallow adjacent edits.
	RangeInward RangeAffinity = iota

	// RangeOutward pushes both ends away from the interior, so the
	// selection tends to grow around adjacent edits.
	RangeOutward

	// RangeForward applies Forward affinity to both ends.
	RangeForward

	// RangeBackward applies Backward affinity to both ends.
	RangeBackward

	// RangeNone declines to disambiguate either end.
	RangeNone
)

// String returns the affinity name.
func (a RangeAffinity) String() string {
	switch a {
	case RangeInward:
		return "inward"
	case RangeOutward:
		return "outward"
	case RangeForward:
		return "forward"
	case RangeBackward:
		return "backward"
	case RangeNone:
		return "none"
	default:
		return "unknown"
	}
}

// TransformRange rebases a range across op with RangeInward affinity.
func TransformRange(r selection.Range, op Operation) (selection.Range, bool) {
	return TransformRangeWithAffinity(r, op, RangeInward)
}

// TransformRangeWithAffinity rebases both ends of a range across op,
// resolving the range affinity into per-end point affinities that respect
// the range's direction. The second result is false when either end no
// longer exists.
func TransformRangeWithAffinity(r selection.Range, op Operation, affinity RangeAffinity) (selection.Range, bool) {
	var anchorAff, focusAff path.Affinity

	switch affinity {
	case RangeInward:
		if r.IsForward() {
			anchorAff = path.Forward
			focusAff = path.Backward
		} else {
			anchorAff = path.Backward
			focusAff = path.Forward
		}
		if r.IsCollapsed() {
			focusAff = anchorAff
		}
	case RangeOutward:
		if r.IsForward() {
			anchorAff = path.Backward
			focusAff = path.Forward
		} else {
			anchorAff = path.Forward
			focusAff = path.Backward
		}
	case RangeForward:
		anchorAff, focusAff = path.Forward, path.Forward
	case RangeBackward:
		anchorAff, focusAff = path.Backward, path.Backward
	case RangeNone:
		anchorAff, focusAff = path.None, path.None
	}

	anchor, ok := TransformPointWithAffinity(r.Anchor, op, anchorAff)
	if !ok {
		return selection.Range{}, false
	}
	focus, ok := TransformPointWithAffinity(r.Focus, op, focusAff)
	if !ok {
		return selection.Range{}, false
	}
	return selection.Range{Anchor: anchor, Focus: focus}, true
}
