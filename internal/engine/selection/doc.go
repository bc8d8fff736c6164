// Package selection provides the Point and Range location types used for
// cursors and selections in a document tree.
//
// A Point is a spot inside a text leaf: the leaf's path plus a character
// offset within its text. A Range is a pair of points, an anchor where
// the selection started and a focus where it currently ends, and may
// run backward when a user selects right to left. When anchor and focus
// coincide, the range is a collapsed cursor.
//
// Both are immutable value types in the same sense as the path package:
// no function here mutates its inputs, and comparisons are structural.
//
// Rebasing points and ranges across document operations lives in the
// operation package alongside the path transform.
package selection
