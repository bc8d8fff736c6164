package event

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/loomkit/loom/internal/engine/operation"
)

// Change describes one operation applied to a document: what happened,
// to which document, at which revision, and who caused it.
type Change struct {
	// Doc is the document's identifier.
	Doc string

	// Revision is the document revision after the operation.
	Revision uint64

	// Op is the operation that was applied.
	Op operation.Operation

	// Origin identifies the producer: OriginLocal for direct edits,
	// OriginUndo/OriginRedo for history replay, or a client id when the
	// operation arrived over the wire.
	Origin string

	// At is when the operation was applied.
	At time.Time
}

// Well-known origins.
const (
	OriginLocal = "local"
	OriginUndo  = "undo"
	OriginRedo  = "redo"
)

// Feed fans document changes out to subscribers. Publishing never blocks:
// a subscriber that falls behind its buffer loses the change, counted in
// Dropped. The zero value is not usable; create feeds with NewFeed.
type Feed struct {
	mu     sync.RWMutex
	subs   map[uint64]chan Change
	nextID uint64
	buffer int
	closed bool

	published atomic.Uint64
	dropped   atomic.Uint64
}

// DefaultBuffer is the per-subscriber channel depth when none is given.
const DefaultBuffer = 64

// NewFeed creates a feed whose subscribers buffer up to buffer changes.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Feed{
		subs:   make(map[uint64]chan Change),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The subscription's channel
// receives every change published after this call, until Cancel or the
// feed closes.
func (f *Feed) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Change, f.buffer)
	if f.closed {
		close(ch)
		return &Subscription{feed: f, ch: ch}
	}

	f.nextID++
	id := f.nextID
	f.subs[id] = ch
	return &Subscription{feed: f, id: id, ch: ch}
}

// Publish delivers c to every subscriber without blocking.
func (f *Feed) Publish(c Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}
	f.published.Add(1)
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
			f.dropped.Add(1)
		}
	}
}

// Close shuts the feed down, closing every subscriber channel. Further
// publishes are discarded; further subscriptions come back already
// closed.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Published returns the total number of changes published.
func (f *Feed) Published() uint64 {
	return f.published.Load()
}

// Dropped returns the total number of changes lost to full subscriber
// buffers.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

// Subscription is one subscriber's handle on a feed.
type Subscription struct {
	feed *Feed
	id   uint64
	ch   chan Change
}

// C returns the channel changes arrive on. It is closed when the
// subscription is cancelled or the feed shuts down.
func (s *Subscription) C() <-chan Change {
	return s.ch
}

// Cancel removes the subscription and closes its channel. Cancelling
// twice is safe.
func (s *Subscription) Cancel() {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	if ch, ok := s.feed.subs[s.id]; ok {
		close(ch)
		delete(s.feed.subs, s.id)
	}
}
