package path

import "errors"

// Errors returned by the derivation helpers. All of them indicate a
// contract violation by the caller (an invalid-argument condition), never
// a recoverable state; callers should check preconditions rather than
// retry.
var (
	// ErrRoot indicates Next, Previous, or Parent was asked of the root
	// path, which has no final index to work with.
	ErrRoot = errors.New("root path has no parent or siblings")

	// ErrNoPrevious indicates Previous was asked of a path whose last
	// index is already zero.
	ErrNoPrevious = errors.New("path has no previous sibling")

	// ErrNotAncestor indicates Relative was called with a reference path
	// that is neither an ancestor of, nor equal to, the path.
	ErrNotAncestor = errors.New("path is not an ancestor")
)
