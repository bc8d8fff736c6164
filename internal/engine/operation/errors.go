package operation

import "errors"

var (
	// ErrCannotInvert indicates an operation has no inverse: either an
	// Unknown payload or a structural operation whose path arithmetic
	// is impossible (a merge or split addressed at the root).
	ErrCannotInvert = errors.New("operation cannot be inverted")

	// ErrBadWire indicates a wire payload that is not a JSON object or
	// is missing fields the declared operation type requires.
	ErrBadWire = errors.New("malformed operation payload")
)
