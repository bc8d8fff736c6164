// Package server relays document operations between websocket clients.
//
// Each document gets one live session holding the authoritative engine
// instance. The first client to join materializes the document from the
// oplog (a cached snapshot plus the operations after it, or the full
// history); the last client to leave caches a fresh snapshot and
// retires the session.
//
// # Protocol
//
// Clients connect to /ws/{doc} and immediately receive a snapshot
// envelope with the document tree, the oplog sequence, and the engine
// revision:
//
//	{"type":"snapshot","doc":"readme","seq":42,"rev":42,"root":{...}}
//
// After that, clients send bare operations in their wire form and
// receive change envelopes for every operation the session applies,
// including echoes of their own:
//
//	{"type":"change","seq":43,"rev":43,"origin":"<client id>","op":{...}}
//
// Rejected frames get an error envelope; the connection stays open.
//
// Selection operations are treated as presence: they are relayed to
// every client but are not applied to the document and not persisted.
// The session tracks each client's last selection as a live range so
// it follows concurrent edits; a selection destroyed by an edit is
// dropped and counted.
//
// # Ordering
//
// A session applies, persists, and fans out operations under one lock,
// so every client observes the same total order, and the oplog sequence
// matches it. Clients that cannot keep up with the fan-out are
// disconnected rather than letting their backlog stall the document.
package server
