// Package history provides undo/redo stacks of operation batches.
//
// Every edit applied to a document records its operations as one batch.
// Undo pops the latest batch and returns the operations that reverse it
// (each inverted, replayed in reverse order); Redo returns the originals.
// The history never touches the document itself: the engine facade
// applies whatever Undo and Redo hand back, through the same pipeline as
// any other edit, so selections and refs rebase correctly during undo
// too.
//
// Batches can be grouped (BeginGroup/EndGroup) so a compound action, such
// as a paste that splits a paragraph and inserts nodes, undoes as a
// single step. The stack is bounded; the oldest batches fall off first.
package history
