// Package event provides the typed change feed connecting document
// engines to their observers.
//
// Every operation a document applies is published as a Change carrying
// the document id, the new revision, the operation itself, and its
// origin. The sync relay subscribes to fan changes out to connected
// clients; tooling subscribes to watch a document evolve.
//
// Delivery is buffered and lossy: a publisher never blocks on a slow
// subscriber, and changes that overflow a subscriber's buffer are
// counted rather than queued without bound. Subscribers that must not
// miss operations (the relay's persistence path) read the operation log
// instead; the feed is a live signal, not a store.
package event
