// Package oplog persists per-document operation histories.
//
// The log is append-only: each document owns a dense sequence of raw
// operation payloads starting at 1, stored under ordered keys in a
// pebble store, so scanning a document's history is one range
// iteration. The payloads are opaque to this package; callers decode
// them with the operation wire codec.
//
// A bounded snapshot cache rides alongside the log. Sessions that
// materialize a document can park the result here, and late joiners
// replay only the operations after the snapshot instead of the full
// history.
package oplog
