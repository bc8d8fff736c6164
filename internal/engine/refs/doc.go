// Package refs provides live location references: handles that keep
// pointing at the same logical spot in a document while operations
// restructure the tree around it.
//
// A stored path goes stale the moment an edit shifts indices. Wrapping it
// in a ref keeps it current: the ref's registry rebases every live ref
// across each applied operation, so reading the ref always yields the
// location's present address, or reports that the edit deleted it.
//
//	reg := refs.NewRegistry()
//	ref := reg.TrackPath(path.Path{1, 0}, path.Forward)
//
//	reg.Apply(operation.InsertNode{Path: path.Path{0}})
//
//	p, alive := ref.Current()  // [2 0], true
//	ref.Unref()
//
// Refs stay registered until Unref is called, which releases them and
// returns their final value. A dead ref (its target was removed) keeps
// reporting dead; it is never resurrected.
//
// The engine facade owns a registry per document and applies every
// operation to it, so callers normally obtain refs from the document
// rather than constructing a registry themselves.
package refs
