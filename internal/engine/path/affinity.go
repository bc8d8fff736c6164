package path

// Affinity resolves the ambiguity of a location that lands exactly on a
// split boundary: when a node is split in two, a path or point sitting
// precisely at the split must choose a side.
type Affinity int

const (
	// Forward moves the location to the newly created right-hand node.
	// This is the default used when rebasing.
	Forward Affinity = iota

	// Backward keeps the location on the original left-hand node.
	Backward

	// None declines to disambiguate: the rebased location is reported as
	// no longer existing.
	None
)

// String returns the affinity name.
func (a Affinity) String() string {
	switch a {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case None:
		return "none"
	default:
		return "unknown"
	}
}
