package node

import "errors"

// Errors returned by tree navigation.
var (
	// ErrNotFound indicates no node exists at the requested path.
	ErrNotFound = errors.New("no node at path")

	// ErrNotElement indicates a path descended through a text leaf.
	ErrNotElement = errors.New("node is not an element")

	// ErrNotText indicates a leaf was requested but the path names an
	// element.
	ErrNotText = errors.New("node is not a text leaf")
)
