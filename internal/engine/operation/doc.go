// Package operation defines the closed set of edit operations that can be
// applied to a document tree, and the transform engine that rebases paths
// across them.
//
// Operations form a sealed sum type: exactly nine kinds exist, each a
// small value struct, and the sealing method prevents new kinds from being
// declared outside this package. That closed set is what lets the
// transform engine switch exhaustively and be checked branch by branch.
//
// Five kinds restructure the tree and therefore shift paths:
//
//   - InsertNode: a new node appears at a path
//   - RemoveNode: the node at a path is deleted
//   - MergeNode: the node at a path is folded into its previous sibling
//   - SplitNode: the node at a path is split into two siblings
//   - MoveNode: the node at a path is relocated to another path
//
// The remaining kinds (InsertText, RemoveText, SetNode, SetSelection)
// edit content or metadata in place and never move nodes, so every path
// passes through them unchanged. Wire payloads with an unrecognized type
// decode into Unknown, which is likewise path-transparent; this keeps an
// op log written by a newer peer readable.
//
// Rebasing:
//
//	p := path.Path{1, 2}
//	op := operation.InsertNode{Path: path.Path{1, 0}}
//
//	q, ok := operation.TransformPath(p, op)
//	// q == [1 3], ok == true
//
// A false result reports that the node the path referred to was deleted
// by the operation. That is an expected outcome, not an error; callers
// decide how to fall back.
//
// Every operation has an exact inverse (Invert), which is what the
// history package replays for undo. Encode and Decode translate
// operations to and from their JSON wire form.
package operation
