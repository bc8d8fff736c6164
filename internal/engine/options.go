package engine

import (
	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
	DefaultFeedBuffer     = 64
)

// Option configures a Document during creation.
type Option func(*Document)

// WithID sets the document's identifier. Documents without one get a
// random uuid.
func WithID(id string) Option {
	return func(d *Document) {
		d.id = id
	}
}

// WithContent sets the initial document tree. The tree is deep-copied,
// so the caller keeps ownership of root.
func WithContent(root *node.Node) Option {
	return func(d *Document) {
		d.initRoot = root
	}
}

// WithSelection sets the initial selection.
func WithSelection(r selection.Range) Option {
	return func(d *Document) {
		d.initSel = &r
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(d *Document) {
		if max > 0 {
			d.maxUndoEntries = max
		}
	}
}

// WithFeedBuffer sets the per-subscriber change buffer size.
func WithFeedBuffer(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.feedBuffer = n
		}
	}
}

// WithReadOnly creates a read-only document.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}
