// Package engine provides the core tree-document engine for Loom.
//
// The engine package serves as the main facade, combining the document
// tree, selection handling, live location refs, undo/redo, and change
// notification into a unified, thread-safe API suitable for building
// collaborative editors.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - path: tree paths, their ordering, and derivation helpers
//   - node: the document tree of elements and text leaves
//   - selection: points and ranges over the tree
//   - operation: the sealed operation set, path/point/range rebasing,
//     inversion, and the JSON wire codec
//   - refs: live refs that track a location across edits
//   - history: batch-based undo/redo stacks
//
// # Thread Safety
//
// All Document operations are thread-safe. The document uses a
// read-write mutex to allow concurrent reads while serializing writes.
//
// # Basic Usage
//
// Create a document and perform edits:
//
//	root := node.NewElement("doc",
//	    node.NewElement("paragraph", node.NewText("hello world")),
//	)
//	d := engine.New(engine.WithContent(root))
//
//	// Insert text inside the leaf at [0 0]
//	d.InsertTextAt(path.Path{0, 0}, 5, ",")
//
//	// Split the paragraph after its first leaf
//	d.SplitNodeAt(path.Path{0}, 1)
//
//	// Read content
//	text := d.PlainText()
//
// Operations decoded from the wire apply the same way:
//
//	op, _ := operation.Decode(frame)
//	if err := d.Apply(op); err != nil { ... }
//
// # Location Rebasing
//
// Every applied operation rebases the selection and all live refs, so
// locations captured before an edit remain meaningful after it:
//
//	ref := d.TrackPath(path.Path{2, 1}, path.Forward)
//	d.Apply(operation.InsertNode{Path: path.Path{0}, Node: n})
//	p, alive := ref.Current() // now {3, 1}
//
// A ref whose target is deleted reports a dead state and never comes
// back to life. Unref releases the handle:
//
//	ref.Unref()
//
// # Undo/Redo
//
// The document maintains full undo/redo history. Undo applies the
// inverses of the most recent batch through the regular pipeline, so
// refs and subscribers observe the reversal like any other change:
//
//	d.InsertTextAt(p, 0, "a")
//	d.Undo()
//	d.Redo()
//
// Group multiple operations into a single undo unit:
//
//	d.BeginUndoGroup("wrap in quote")
//	d.Apply(...)
//	d.Apply(...)
//	d.EndUndoGroup()
//
//	d.Undo() // Undoes both operations at once
//
// # Change Feed
//
// Subscribers receive every applied operation together with the document
// revision and the change's origin. Publishing never blocks the editing
// path; a subscriber that falls behind drops changes:
//
//	sub := d.Subscribe()
//	defer sub.Cancel()
//	for c := range sub.C() {
//	    log.Printf("rev %d: %s", c.Revision, operation.Describe(c.Op))
//	}
//
// # Read-Only Mode
//
// Create a read-only document that rejects write operations:
//
//	d := engine.New(engine.WithContent(root), engine.WithReadOnly())
//	err := d.Apply(op) // err == engine.ErrReadOnly
//
// # Error Handling
//
// The package defines several error types:
//
//   - ErrInvalidOperation: operation inconsistent with the live tree
//   - ErrOffsetOutOfRange: text offset or split position out of range
//   - ErrMoveIntoSelf: move destination inside the moved subtree
//   - ErrReadOnly: write operation on a read-only document
//   - ErrClosed: write operation on a closed document
package engine
