package path

import (
	"strconv"
	"strings"
)

// Path locates a node in a document tree as a chain of child indices.
// The empty path refers to the root; element k is the index of a child at
// depth k, so the length of a path equals the depth of the node it names.
// Paths are value types compared structurally, never by identity.
//
// All elements must be non-negative. Callers are responsible for that
// invariant; the algebra itself never clamps or validates indices beyond
// its own arithmetic.
type Path []int

// Root is the path of the document root.
var Root = Path{}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// IsRoot returns true if the path refers to the document root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// String returns a human-readable representation such as "[1.0.2]".
// The root path renders as "[]".
func (p Path) String() string {
	if len(p) == 0 {
		return "[]"
	}
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ".") + "]"
}

// Compare orders two paths lexicographically over their shared-length
// prefix, returning -1, 0, or 1. Paths of different lengths whose shared
// prefix matches compare equal even though one is an ancestor of the
// other; use Equals to distinguish them. This is intentional: for
// ordering purposes a node and its ancestors occupy the same position.
func Compare(a, b Path) int {
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	for i := 0; i < smaller; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Equals returns true if both paths have the same length and elements.
func Equals(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsBefore returns true if a ends before b in document order.
func IsBefore(a, b Path) bool {
	return Compare(a, b) == -1
}

// IsAfter returns true if a ends after b in document order.
func IsAfter(a, b Path) bool {
	return Compare(a, b) == 1
}

// IsAncestor returns true if a is a proper ancestor of b: strictly
// shorter, and b descends through it.
func IsAncestor(a, b Path) bool {
	return len(a) < len(b) && Compare(a, b) == 0
}

// IsDescendant returns true if a is a proper descendant of b.
func IsDescendant(a, b Path) bool {
	return len(a) > len(b) && Compare(a, b) == 0
}

// IsParent returns true if a is exactly one level above b.
func IsParent(a, b Path) bool {
	return len(a)+1 == len(b) && Compare(a, b) == 0
}

// IsChild returns true if a is exactly one level below b.
func IsChild(a, b Path) bool {
	return len(a) == len(b)+1 && Compare(a, b) == 0
}

// IsCommon returns true if a is an ancestor of b or equal to it.
func IsCommon(a, b Path) bool {
	return len(a) <= len(b) && Compare(a, b) == 0
}

// IsSibling returns true if the paths share a parent but name different
// children. The root has no siblings.
func IsSibling(a, b Path) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	if a[len(a)-1] == b[len(b)-1] {
		return false
	}
	return Equals(a[:len(a)-1], b[:len(b)-1])
}

// EndsBefore returns true if the last index of a precedes the
// corresponding index of b along a shared ancestor chain: the paths match
// exactly up to a's final element, and that element is smaller than b's
// element at the same depth. The root never ends before anything.
func EndsBefore(a, b Path) bool {
	i := len(a) - 1
	if i < 0 || len(b) <= i {
		return false
	}
	return Equals(a[:i], b[:i]) && a[i] < b[i]
}

// EndsAt returns true if a matches b exactly through a's full length;
// b may continue deeper.
func EndsAt(a, b Path) bool {
	if len(b) < len(a) {
		return false
	}
	return Equals(a, b[:len(a)])
}

// EndsAfter returns true if the last index of a follows the corresponding
// index of b along a shared ancestor chain.
func EndsAfter(a, b Path) bool {
	i := len(a) - 1
	if i < 0 || len(b) <= i {
		return false
	}
	return Equals(a[:i], b[:i]) && a[i] > b[i]
}
