package selection

import (
	"fmt"

	"github.com/loomkit/loom/internal/engine/path"
)

// Range is a span between two points: the anchor, where a selection
// started, and the focus, where it currently ends. A range whose focus
// precedes its anchor is backward; a range whose points coincide is a
// collapsed cursor.
type Range struct {
	Anchor Point // where the selection started
	Focus  Point // where the selection ends (the active side)
}

// NewRange creates a range from anchor to focus.
func NewRange(anchor, focus Point) Range {
	return Range{Anchor: anchor, Focus: focus}
}

// Collapsed creates a collapsed range (a cursor) at the given point.
func Collapsed(pt Point) Range {
	return Range{Anchor: pt, Focus: pt}
}

// Clone returns an independent copy of the range.
func (r Range) Clone() Range {
	return Range{Anchor: r.Anchor.Clone(), Focus: r.Focus.Clone()}
}

// String returns a human-readable representation such as
// "[0.0]:1 -> [0.2]:3".
func (r Range) String() string {
	return fmt.Sprintf("%s -> %s", r.Anchor, r.Focus)
}

// IsCollapsed returns true if anchor and focus are the same point.
func (r Range) IsCollapsed() bool {
	return r.Anchor.Equals(r.Focus)
}

// IsBackward returns true if the focus precedes the anchor.
func (r Range) IsBackward() bool {
	return r.Anchor.IsAfter(r.Focus)
}

// IsForward returns true if the range is not backward.
func (r Range) IsForward() bool {
	return !r.IsBackward()
}

// Equals returns true if both ranges have the same anchor and focus.
func (r Range) Equals(other Range) bool {
	return r.Anchor.Equals(other.Anchor) && r.Focus.Equals(other.Focus)
}

// Edges returns the range's start and end points in document order,
// regardless of direction.
func (r Range) Edges() (start, end Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

// Start returns the earlier of the two points.
func (r Range) Start() Point {
	start, _ := r.Edges()
	return start
}

// End returns the later of the two points.
func (r Range) End() Point {
	_, end := r.Edges()
	return end
}

// IncludesPoint returns true if the point sits between the range's edges,
// inclusive on both sides.
func (r Range) IncludesPoint(pt Point) bool {
	start, end := r.Edges()
	return pt.Compare(start) >= 0 && pt.Compare(end) <= 0
}

// IncludesPath returns true if the node at p falls within the range:
// after (or at, or above) the start point's leaf and before (or at, or
// above) the end point's leaf.
func (r Range) IncludesPath(p path.Path) bool {
	start, end := r.Edges()
	afterStart := path.Compare(p, start.Path) >= 0
	beforeEnd := path.Compare(p, end.Path) <= 0
	return afterStart && beforeEnd
}

// Intersection returns the overlap of two ranges and true, or the zero
// range and false when they do not touch. The result is normalized to
// forward orientation.
func (r Range) Intersection(other Range) (Range, bool) {
	s1, e1 := r.Edges()
	s2, e2 := other.Edges()
	start := s1
	if s2.IsAfter(start) {
		start = s2
	}
	end := e1
	if e2.IsBefore(end) {
		end = e2
	}
	if start.IsAfter(end) {
		return Range{}, false
	}
	return Range{Anchor: start, Focus: end}, true
}
