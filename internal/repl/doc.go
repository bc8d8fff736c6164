// Package repl is an interactive shell for poking at a document: apply
// wire operations, rebase paths by hand, follow tracked locations
// through edits, and walk the undo history. It exists for exploring
// transform behavior; nothing it does is needed by the engine.
package repl
