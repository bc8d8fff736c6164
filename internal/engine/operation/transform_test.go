package operation

import (
	"testing"

	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Path Transform Tests

func TestTransformPathRootUntouched(t *testing.T) {
	ops := []Operation{
		InsertNode{Path: path.Path{0}},
		RemoveNode{Path: path.Path{0}},
		MergeNode{Path: path.Path{1}, Position: 2},
		SplitNode{Path: path.Path{0}, Position: 1},
		MoveNode{Path: path.Path{0}, NewPath: path.Path{2}},
	}

	for _, op := range ops {
		got, ok := TransformPath(path.Root, op)
		if !ok {
			t.Errorf("%s: root should survive every operation", Describe(op))
			continue
		}
		if !got.IsRoot() {
			t.Errorf("%s: root should stay root, got %v", Describe(op), got)
		}
	}
}

func TestTransformPathInsertNode(t *testing.T) {
	op := InsertNode{Path: path.Path{0}}
	tests := []struct {
		p, want path.Path
	}{
		{path.Path{0}, path.Path{1}},
		{path.Path{1}, path.Path{2}},
		// Descendants of the shifted node shift with it.
		{path.Path{0, 3}, path.Path{1, 3}},
		{path.Path{1, 0}, path.Path{2, 0}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("insert at [0]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("insert at [0] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathInsertNodeDeeper(t *testing.T) {
	op := InsertNode{Path: path.Path{1, 1}}
	tests := []struct {
		p, want path.Path
	}{
		{path.Path{1, 1}, path.Path{1, 2}},
		{path.Path{1, 2, 0}, path.Path{1, 3, 0}},
		// Earlier siblings and their subtrees are unaffected.
		{path.Path{1, 0, 2}, path.Path{1, 0, 2}},
		// So is everything outside the parent.
		{path.Path{0, 5}, path.Path{0, 5}},
		{path.Path{2}, path.Path{2}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("insert at [1.1]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("insert at [1.1] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathRemoveNode(t *testing.T) {
	op := RemoveNode{Path: path.Path{1}}
	tests := []struct {
		p    path.Path
		want path.Path
		gone bool
	}{
		{p: path.Path{1}, gone: true},
		{p: path.Path{1, 0}, gone: true},
		{p: path.Path{1, 4, 2}, gone: true},
		{p: path.Path{2}, want: path.Path{1}},
		{p: path.Path{2, 3}, want: path.Path{1, 3}},
		{p: path.Path{0}, want: path.Path{0}},
		{p: path.Path{0, 9}, want: path.Path{0, 9}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if tt.gone {
			if ok {
				t.Errorf("remove at [1] applied to %v: expected the path to be gone, got %v", tt.p, got)
			}
			if got != nil {
				t.Errorf("remove at [1] applied to %v: deleted path should be nil, got %v", tt.p, got)
			}
			continue
		}
		if !ok {
			t.Errorf("remove at [1]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("remove at [1] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMergeNode(t *testing.T) {
	op := MergeNode{Path: path.Path{1}, Position: 2}
	tests := []struct {
		p, want path.Path
	}{
		// The merged node's path now names the survivor.
		{path.Path{1}, path.Path{0}},
		// Later siblings shift left.
		{path.Path{2}, path.Path{1}},
		{path.Path{3, 0}, path.Path{2, 0}},
		// Descendants land inside the survivor, offset by its prior
		// child count.
		{path.Path{1, 0}, path.Path{0, 2}},
		{path.Path{1, 3}, path.Path{0, 5}},
		{path.Path{1, 3, 1}, path.Path{0, 5, 1}},
		// Everything before the merge point is untouched.
		{path.Path{0}, path.Path{0}},
		{path.Path{0, 5}, path.Path{0, 5}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("merge at [1]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("merge at [1] pos 2 applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMergeNodeNested(t *testing.T) {
	// A merge below the top level combines the sibling decrement with the
	// position offset in one step; this pins the exact arithmetic.
	op := MergeNode{Path: path.Path{1, 1}, Position: 3}

	got, ok := TransformPath(path.Path{1, 1, 2, 7}, op)
	if !ok {
		t.Fatal("descendant of a merged node should survive")
	}
	if !path.Equals(got, path.Path{1, 0, 5, 7}) {
		t.Errorf("expected [1.0.5.7], got %v", got)
	}
}

func TestTransformPathSplitNodeAffinity(t *testing.T) {
	op := SplitNode{Path: path.Path{0}, Position: 2}

	got, ok := TransformPathWithAffinity(path.Path{0}, op, path.Forward)
	if !ok || !path.Equals(got, path.Path{1}) {
		t.Errorf("forward affinity should name the new right node [1], got %v (ok=%v)", got, ok)
	}

	got, ok = TransformPathWithAffinity(path.Path{0}, op, path.Backward)
	if !ok || !path.Equals(got, path.Path{0}) {
		t.Errorf("backward affinity should keep the original node [0], got %v (ok=%v)", got, ok)
	}

	got, ok = TransformPathWithAffinity(path.Path{0}, op, path.None)
	if ok {
		t.Errorf("affinity none should report the path gone, got %v", got)
	}

	// The one-argument form defaults to forward.
	got, ok = TransformPath(path.Path{0}, op)
	if !ok || !path.Equals(got, path.Path{1}) {
		t.Errorf("default affinity should be forward, got %v (ok=%v)", got, ok)
	}
}

func TestTransformPathSplitNode(t *testing.T) {
	op := SplitNode{Path: path.Path{1}, Position: 2}
	tests := []struct {
		p, want path.Path
	}{
		// Later siblings shift right to make room for the new node.
		{path.Path{2}, path.Path{3}},
		{path.Path{2, 4}, path.Path{3, 4}},
		// Children at or past the split position move to the new right
		// node and are renumbered from zero.
		{path.Path{1, 2}, path.Path{2, 0}},
		{path.Path{1, 3}, path.Path{2, 1}},
		{path.Path{1, 3, 5}, path.Path{2, 1, 5}},
		// Children before the split position stay put.
		{path.Path{1, 0}, path.Path{1, 0}},
		{path.Path{1, 1}, path.Path{1, 1}},
		// Unrelated paths are untouched.
		{path.Path{0}, path.Path{0}},
		{path.Path{0, 4}, path.Path{0, 4}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("split at [1]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("split at [1] pos 2 applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMoveNodeOntoItself(t *testing.T) {
	op := MoveNode{Path: path.Path{3}, NewPath: path.Path{3}}

	for _, p := range []path.Path{{3}, {3, 1}, {0}, {5, 2}} {
		got, ok := TransformPath(p, op)
		if !ok {
			t.Errorf("move onto itself: %v should survive", p)
			continue
		}
		if !path.Equals(got, p) {
			t.Errorf("move onto itself applied to %v: expected no change, got %v", p, got)
		}
	}
}

func TestTransformPathMoveNodeSubtree(t *testing.T) {
	// Paths into the moved subtree ride along: destination prefix plus
	// their own suffix.
	op := MoveNode{Path: path.Path{1}, NewPath: path.Path{3}}
	tests := []struct {
		p, want path.Path
	}{
		{path.Path{1}, path.Path{3}},
		{path.Path{1, 2}, path.Path{3, 2}},
		{path.Path{1, 0, 4}, path.Path{3, 0, 4}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("move [1] to [3]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("move [1] to [3] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMoveNodeIntoDeeperDestination(t *testing.T) {
	// Moving down past its own position: the destination prefix is
	// corrected for the slot the node vacated.
	op := MoveNode{Path: path.Path{1}, NewPath: path.Path{3, 0}}

	got, ok := TransformPath(path.Path{1, 5}, op)
	if !ok {
		t.Fatal("descendant of the moved node should survive")
	}
	if !path.Equals(got, path.Path{2, 0, 5}) {
		t.Errorf("expected [2.0.5], got %v", got)
	}
}

func TestTransformPathMoveNodeDestinationBefore(t *testing.T) {
	// Moving a later node to an earlier slot shifts what sat there.
	op := MoveNode{Path: path.Path{4}, NewPath: path.Path{1}}
	tests := []struct {
		p, want path.Path
	}{
		{path.Path{1}, path.Path{2}},
		{path.Path{1, 3}, path.Path{2, 3}},
		{path.Path{2}, path.Path{3}},
		// Before the destination: untouched.
		{path.Path{0}, path.Path{0}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("move [4] to [1]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("move [4] to [1] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMoveNodeSourceBefore(t *testing.T) {
	// Moving an earlier node to a later slot closes the gap it left.
	op := MoveNode{Path: path.Path{0}, NewPath: path.Path{3}}
	tests := []struct {
		p, want path.Path
	}{
		{path.Path{1}, path.Path{0}},
		{path.Path{1, 2}, path.Path{0, 2}},
		{path.Path{2}, path.Path{1}},
	}

	for _, tt := range tests {
		got, ok := TransformPath(tt.p, op)
		if !ok {
			t.Errorf("move [0] to [3]: %v should survive", tt.p)
			continue
		}
		if !path.Equals(got, tt.want) {
			t.Errorf("move [0] to [3] applied to %v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestTransformPathMoveNodeAcrossSourceAndDestination(t *testing.T) {
	// A path sitting exactly at the destination index is first shifted
	// left by the removal, then right by the insertion.
	op := MoveNode{Path: path.Path{0}, NewPath: path.Path{2}}

	got, ok := TransformPath(path.Path{2}, op)
	if !ok {
		t.Fatal("path at the destination should survive")
	}
	if !path.Equals(got, path.Path{2}) {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestTransformPathMoveNodeIntoDestinationSubtree(t *testing.T) {
	// The destination is an ancestor of the rebased path: its children
	// shift right at the destination depth.
	op := MoveNode{Path: path.Path{3}, NewPath: path.Path{1}}

	got, ok := TransformPath(path.Path{1, 4}, op)
	if !ok {
		t.Fatal("descendant of the destination should survive")
	}
	if !path.Equals(got, path.Path{2, 4}) {
		t.Errorf("expected [2.4], got %v", got)
	}
}

func TestTransformPathIgnoresNonStructural(t *testing.T) {
	p := path.Path{1, 2}
	ops := []Operation{
		InsertText{Path: path.Path{1, 2}, Offset: 0, Text: "hi"},
		RemoveText{Path: path.Path{1}, Offset: 3, Text: "x"},
		SetNode{Path: path.Path{1, 2}},
		SetSelection{},
		Unknown{Type: "mark_node", Raw: []byte(`{"type":"mark_node"}`)},
	}

	for _, op := range ops {
		got, ok := TransformPath(p, op)
		if !ok {
			t.Errorf("%s should never delete a path", Describe(op))
			continue
		}
		if !path.Equals(got, p) {
			t.Errorf("%s should leave %v unchanged, got %v", Describe(op), p, got)
		}
	}
}

func TestTransformPathCopyOnWrite(t *testing.T) {
	p := path.Path{1, 2}
	op := InsertNode{Path: path.Path{1}}

	first, ok := TransformPath(p, op)
	if !ok {
		t.Fatal("path should survive an insert")
	}
	second, ok := TransformPath(p, op)
	if !ok {
		t.Fatal("path should survive an insert")
	}

	if !path.Equals(first, second) {
		t.Errorf("repeated transforms should agree: %v vs %v", first, second)
	}
	if !path.Equals(p, path.Path{1, 2}) {
		t.Errorf("input path was mutated: %v", p)
	}

	// The result must be a fresh value, not an alias of the input.
	first[0] = 99
	if p[0] != 1 {
		t.Error("result aliases the input path")
	}
}

func TestCanAffectPath(t *testing.T) {
	affecting := []Operation{
		InsertNode{}, RemoveNode{}, MergeNode{}, SplitNode{}, MoveNode{},
	}
	for _, op := range affecting {
		if !CanAffectPath(op) {
			t.Errorf("%s should be able to affect paths", op.Kind())
		}
	}

	transparent := []Operation{
		InsertText{}, RemoveText{}, SetNode{}, SetSelection{}, Unknown{},
	}
	for _, op := range transparent {
		if CanAffectPath(op) {
			t.Errorf("%s should never affect paths", op.Kind())
		}
	}
}

// Point Transform Tests

func TestTransformPointInsertText(t *testing.T) {
	op := InsertText{Path: path.Path{0}, Offset: 2, Text: "ab"}
	tests := []struct {
		offset, want int
	}{
		{5, 7},
		{3, 5},
		{1, 1},
		{0, 0},
	}

	for _, tt := range tests {
		pt := selection.NewPoint(path.Path{0}, tt.offset)
		got, ok := TransformPoint(pt, op)
		if !ok {
			t.Errorf("insert_text should never delete a point")
			continue
		}
		if got.Offset != tt.want {
			t.Errorf("insert \"ab\" at 2, point at %d: expected offset %d, got %d", tt.offset, tt.want, got.Offset)
		}
	}
}

func TestTransformPointInsertTextAtPointAffinity(t *testing.T) {
	op := InsertText{Path: path.Path{0}, Offset: 2, Text: "ab"}
	pt := selection.NewPoint(path.Path{0}, 2)

	got, ok := TransformPointWithAffinity(pt, op, path.Forward)
	if !ok || got.Offset != 4 {
		t.Errorf("forward affinity should follow the insertion, got %d", got.Offset)
	}

	got, ok = TransformPointWithAffinity(pt, op, path.Backward)
	if !ok || got.Offset != 2 {
		t.Errorf("backward affinity should stay put, got %d", got.Offset)
	}
}

func TestTransformPointInsertTextCountsRunes(t *testing.T) {
	// Offsets are rune counts, not byte counts.
	op := InsertText{Path: path.Path{0}, Offset: 0, Text: "héé"}
	pt := selection.NewPoint(path.Path{0}, 4)

	got, ok := TransformPoint(pt, op)
	if !ok {
		t.Fatal("insert_text should never delete a point")
	}
	if got.Offset != 7 {
		t.Errorf("expected offset 7 (+3 runes), got %d", got.Offset)
	}
}

func TestTransformPointInsertTextOtherLeaf(t *testing.T) {
	op := InsertText{Path: path.Path{1}, Offset: 0, Text: "abc"}
	pt := selection.NewPoint(path.Path{0}, 2)

	got, ok := TransformPoint(pt, op)
	if !ok || got.Offset != 2 || !path.Equals(got.Path, path.Path{0}) {
		t.Errorf("text in another leaf should not move the point, got %s", got)
	}
}

func TestTransformPointRemoveText(t *testing.T) {
	op := RemoveText{Path: path.Path{0}, Offset: 2, Text: "abc"}
	tests := []struct {
		offset, want int
	}{
		// Past the removed span: shift left by its full length.
		{7, 4},
		{5, 2},
		// Inside the span: collapse to its start.
		{4, 2},
		{3, 2},
		{2, 2},
		// Before the span: untouched.
		{1, 1},
	}

	for _, tt := range tests {
		pt := selection.NewPoint(path.Path{0}, tt.offset)
		got, ok := TransformPoint(pt, op)
		if !ok {
			t.Errorf("remove_text should never delete a point")
			continue
		}
		if got.Offset != tt.want {
			t.Errorf("remove \"abc\" at 2, point at %d: expected offset %d, got %d", tt.offset, tt.want, got.Offset)
		}
	}
}

func TestTransformPointRemoveNode(t *testing.T) {
	op := RemoveNode{Path: path.Path{1}}

	if _, ok := TransformPoint(selection.NewPoint(path.Path{1}, 3), op); ok {
		t.Error("point in the removed node should be gone")
	}
	if _, ok := TransformPoint(selection.NewPoint(path.Path{1, 0}, 3), op); ok {
		t.Error("point below the removed node should be gone")
	}

	got, ok := TransformPoint(selection.NewPoint(path.Path{2, 0}, 3), op)
	if !ok {
		t.Fatal("point after the removed node should survive")
	}
	if !path.Equals(got.Path, path.Path{1, 0}) || got.Offset != 3 {
		t.Errorf("expected [1.0]:3, got %s", got)
	}
}

func TestTransformPointMergeNode(t *testing.T) {
	// Merging shifts the point into the survivor, past its prior content.
	op := MergeNode{Path: path.Path{1}, Position: 4}
	pt := selection.NewPoint(path.Path{1}, 2)

	got, ok := TransformPoint(pt, op)
	if !ok {
		t.Fatal("point in the merged node should survive")
	}
	if !path.Equals(got.Path, path.Path{0}) || got.Offset != 6 {
		t.Errorf("expected [0]:6, got %s", got)
	}
}

func TestTransformPointSplitNode(t *testing.T) {
	op := SplitNode{Path: path.Path{1}, Position: 3}

	// Past the split point: move into the new node, offset rebased.
	got, ok := TransformPoint(selection.NewPoint(path.Path{1}, 5), op)
	if !ok {
		t.Fatal("point past the split should survive")
	}
	if !path.Equals(got.Path, path.Path{2}) || got.Offset != 2 {
		t.Errorf("expected [2]:2, got %s", got)
	}

	// Before the split point: untouched.
	got, ok = TransformPoint(selection.NewPoint(path.Path{1}, 2), op)
	if !ok {
		t.Fatal("point before the split should survive")
	}
	if !path.Equals(got.Path, path.Path{1}) || got.Offset != 2 {
		t.Errorf("expected [1]:2, got %s", got)
	}

	// A later sibling's point follows the path shift only.
	got, ok = TransformPoint(selection.NewPoint(path.Path{2}, 1), op)
	if !ok {
		t.Fatal("point after the split node should survive")
	}
	if !path.Equals(got.Path, path.Path{3}) || got.Offset != 1 {
		t.Errorf("expected [3]:1, got %s", got)
	}
}

func TestTransformPointSplitNodeAtBoundary(t *testing.T) {
	op := SplitNode{Path: path.Path{1}, Position: 3}
	pt := selection.NewPoint(path.Path{1}, 3)

	got, ok := TransformPointWithAffinity(pt, op, path.Forward)
	if !ok {
		t.Fatal("forward affinity should keep the point")
	}
	if !path.Equals(got.Path, path.Path{2}) || got.Offset != 0 {
		t.Errorf("forward: expected [2]:0, got %s", got)
	}

	got, ok = TransformPointWithAffinity(pt, op, path.Backward)
	if !ok {
		t.Fatal("backward affinity should keep the point")
	}
	if !path.Equals(got.Path, path.Path{1}) || got.Offset != 3 {
		t.Errorf("backward: expected [1]:3, got %s", got)
	}

	if _, ok := TransformPointWithAffinity(pt, op, path.None); ok {
		t.Error("affinity none at the exact boundary should report the point gone")
	}
}

func TestTransformPointInsertNode(t *testing.T) {
	op := InsertNode{Path: path.Path{0}}
	pt := selection.NewPoint(path.Path{1, 2}, 5)

	got, ok := TransformPoint(pt, op)
	if !ok {
		t.Fatal("point should survive an insert elsewhere")
	}
	if !path.Equals(got.Path, path.Path{2, 2}) || got.Offset != 5 {
		t.Errorf("expected [2.2]:5, got %s", got)
	}
}

func TestTransformPointMoveNode(t *testing.T) {
	op := MoveNode{Path: path.Path{0}, NewPath: path.Path{2}}
	pt := selection.NewPoint(path.Path{0, 1}, 4)

	got, ok := TransformPoint(pt, op)
	if !ok {
		t.Fatal("point inside the moved subtree should survive")
	}
	if !path.Equals(got.Path, path.Path{2, 1}) || got.Offset != 4 {
		t.Errorf("expected [2.1]:4, got %s", got)
	}
}

func TestTransformPointDoesNotMutateInput(t *testing.T) {
	pt := selection.NewPoint(path.Path{1}, 5)
	op := SplitNode{Path: path.Path{1}, Position: 3}

	if _, ok := TransformPoint(pt, op); !ok {
		t.Fatal("point should survive")
	}
	if !path.Equals(pt.Path, path.Path{1}) || pt.Offset != 5 {
		t.Errorf("input point was mutated: %s", pt)
	}
}

// Range Transform Tests

func TestTransformRangeShiftsBothEnds(t *testing.T) {
	r := selection.NewRange(
		selection.NewPoint(path.Path{0}, 1),
		selection.NewPoint(path.Path{0}, 4),
	)
	op := InsertText{Path: path.Path{0}, Offset: 0, Text: "xy"}

	got, ok := TransformRange(r, op)
	if !ok {
		t.Fatal("range should survive a text insert")
	}
	if got.Anchor.Offset != 3 || got.Focus.Offset != 6 {
		t.Errorf("expected offsets 3 and 6, got %d and %d", got.Anchor.Offset, got.Focus.Offset)
	}
}

func TestTransformRangeInwardCollapsedAtSplit(t *testing.T) {
	// A collapsed range on the boundary must stay collapsed: both ends
	// resolve with the same affinity.
	pt := selection.NewPoint(path.Path{1}, 3)
	r := selection.Collapsed(pt)
	op := SplitNode{Path: path.Path{1}, Position: 3}

	got, ok := TransformRange(r, op)
	if !ok {
		t.Fatal("collapsed range should survive the split")
	}
	if !got.IsCollapsed() {
		t.Errorf("range should stay collapsed, got %s", got)
	}
	if !path.Equals(got.Anchor.Path, path.Path{2}) || got.Anchor.Offset != 0 {
		t.Errorf("expected [2]:0, got %s", got.Anchor)
	}
}

func TestTransformRangeInwardShrinks(t *testing.T) {
	// A forward range starting exactly on the boundary pulls its anchor
	// inward, across the split into the new node.
	r := selection.NewRange(
		selection.NewPoint(path.Path{1}, 3),
		selection.NewPoint(path.Path{1}, 5),
	)
	op := SplitNode{Path: path.Path{1}, Position: 3}

	got, ok := TransformRangeWithAffinity(r, op, RangeInward)
	if !ok {
		t.Fatal("range should survive the split")
	}
	if !path.Equals(got.Anchor.Path, path.Path{2}) || got.Anchor.Offset != 0 {
		t.Errorf("anchor: expected [2]:0, got %s", got.Anchor)
	}
	if !path.Equals(got.Focus.Path, path.Path{2}) || got.Focus.Offset != 2 {
		t.Errorf("focus: expected [2]:2, got %s", got.Focus)
	}
}

func TestTransformRangeOutwardStaysBehindSplit(t *testing.T) {
	r := selection.NewRange(
		selection.NewPoint(path.Path{1}, 1),
		selection.NewPoint(path.Path{1}, 3),
	)
	op := SplitNode{Path: path.Path{1}, Position: 3}

	got, ok := TransformRangeWithAffinity(r, op, RangeOutward)
	if !ok {
		t.Fatal("range should survive the split")
	}
	// Outward pushes the focus across the boundary into the new node.
	if !path.Equals(got.Anchor.Path, path.Path{1}) || got.Anchor.Offset != 1 {
		t.Errorf("anchor: expected [1]:1, got %s", got.Anchor)
	}
	if !path.Equals(got.Focus.Path, path.Path{2}) || got.Focus.Offset != 0 {
		t.Errorf("focus: expected [2]:0, got %s", got.Focus)
	}
}

func TestTransformRangeNoneVanishesAtBoundary(t *testing.T) {
	r := selection.Collapsed(selection.NewPoint(path.Path{1}, 3))
	op := SplitNode{Path: path.Path{1}, Position: 3}

	if _, ok := TransformRangeWithAffinity(r, op, RangeNone); ok {
		t.Error("affinity none should report the range gone at the boundary")
	}
}

func TestTransformRangeDeletedEnd(t *testing.T) {
	r := selection.NewRange(
		selection.NewPoint(path.Path{0}, 0),
		selection.NewPoint(path.Path{1}, 2),
	)
	op := RemoveNode{Path: path.Path{1}}

	if _, ok := TransformRange(r, op); ok {
		t.Error("range should vanish when one end's node is removed")
	}
}

func TestRangeAffinityString(t *testing.T) {
	tests := []struct {
		a    RangeAffinity
		want string
	}{
		{RangeInward, "inward"},
		{RangeOutward, "outward"},
		{RangeForward, "forward"},
		{RangeBackward, "backward"},
		{RangeNone, "none"},
		{RangeAffinity(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("RangeAffinity(%d).String(): expected %q, got %q", int(tt.a), tt.want, got)
		}
	}
}
