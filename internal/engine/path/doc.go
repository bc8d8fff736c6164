// Package path provides the index-path algebra used to address nodes in a
// document tree. A path is an ordered list of child indices: the empty path
// is the document root, and each element selects a child one level deeper.
//
// The package provides:
//
//   - The Path value type with structural comparison
//   - Relational predicates over two paths (ordering, ancestry, siblings,
//     and the EndsBefore/EndsAt/EndsAfter boundary relations)
//   - Derivation helpers producing related paths (Levels, Ancestors,
//     Common, Next, Previous, Parent, Relative)
//   - The Affinity tie-break used when a rebased location lands exactly on
//     a split boundary
//
// Basic usage:
//
//	p := path.Path{1, 0, 2}
//
//	path.IsAncestor(path.Path{1}, p)        // true
//	path.Compare(path.Path{1, 1}, p)        // 1
//
//	parent, _ := path.Parent(p)              // [1 0]
//	next, _ := path.Next(p)                  // [1 0 3]
//
// Immutability:
//
// Path values are never mutated by this package. Every function that
// produces a path allocates a fresh one, so callers can hold paths across
// calls without defensive copying. Functions that cannot produce a result
// for a given input (Next of the root, Previous at index zero, Relative
// with a non-ancestor) return an invalid-argument error; these indicate a
// contract violation by the caller, not a recoverable condition.
//
// Rebasing paths across document operations lives in the operation
// package, which builds on the predicates defined here.
package path
