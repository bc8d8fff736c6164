package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrInvalidOperation indicates an operation that is inconsistent
	// with the live tree, such as merging the first sibling or inserting
	// past the end of a parent.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrOffsetOutOfRange indicates a text offset or split position
	// outside the node's content.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrMoveIntoSelf indicates a move whose destination is inside the
	// moved subtree.
	ErrMoveIntoSelf = errors.New("cannot move a node into itself")

	// ErrReadOnly indicates a write was attempted on a read-only
	// document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrClosed indicates a write was attempted on a closed document.
	ErrClosed = errors.New("document is closed")
)
