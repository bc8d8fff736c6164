package selection

import (
	"fmt"

	"github.com/loomkit/loom/internal/engine/path"
)

// Point is a location inside a text leaf: the leaf's path and a character
// offset into its text. Offset 0 is before the first character; an offset
// equal to the text length is after the last.
type Point struct {
	Path   path.Path // path of the text leaf
	Offset int       // character offset within the leaf
}

// NewPoint creates a point at the given path and offset.
func NewPoint(p path.Path, offset int) Point {
	return Point{Path: p, Offset: offset}
}

// Clone returns an independent copy of the point.
func (pt Point) Clone() Point {
	return Point{Path: pt.Path.Clone(), Offset: pt.Offset}
}

// String returns a human-readable representation such as "[0.1]:4".
func (pt Point) String() string {
	return fmt.Sprintf("%s:%d", pt.Path, pt.Offset)
}

// Compare returns -1 if pt is before other in document order, 0 if they
// are at the same position, and 1 if pt is after. Points in different
// leaves order by path; points whose paths compare equal order by offset.
func (pt Point) Compare(other Point) int {
	if c := path.Compare(pt.Path, other.Path); c != 0 {
		return c
	}
	switch {
	case pt.Offset < other.Offset:
		return -1
	case pt.Offset > other.Offset:
		return 1
	default:
		return 0
	}
}

// Equals returns true if both points name the same leaf and offset.
func (pt Point) Equals(other Point) bool {
	return pt.Offset == other.Offset && path.Equals(pt.Path, other.Path)
}

// IsBefore returns true if pt comes before other in document order.
func (pt Point) IsBefore(other Point) bool {
	return pt.Compare(other) == -1
}

// IsAfter returns true if pt comes after other in document order.
func (pt Point) IsAfter(other Point) bool {
	return pt.Compare(other) == 1
}
