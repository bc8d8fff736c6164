package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/loomkit/loom/internal/debug"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/refs"
	"github.com/loomkit/loom/internal/event"
	"github.com/loomkit/loom/internal/oplog"
)

// originReplay marks operations re-applied from the oplog during
// session materialization.
const originReplay = "replay"

// session is the live state for one document: the authoritative engine
// instance, the clients attached to it, and the oplog position. Every
// mutation funnels through mu, so applies, appends, and fan-out share
// one total order.
type session struct {
	hub  *Hub
	name string

	mu      sync.Mutex
	doc     *engine.Document
	sub     *event.Subscription
	seq     uint64
	clients map[uuid.UUID]*client
	cursors map[uuid.UUID]*refs.RangeRef
	closed  bool
}

// newSession rebuilds the document from the oplog: from a cached
// snapshot when one is available, from scratch otherwise, then replays
// every operation past that point.
func newSession(h *Hub, name string) (*session, error) {
	last, err := h.store.LastSeq(name)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{engine.WithID(name)}
	opts = append(opts, h.docOpts...)
	from := uint64(1)
	if snap, ok := h.store.CachedSnapshot(name); ok && snap.Seq <= last {
		var root node.Node
		if err := json.Unmarshal(snap.Root, &root); err != nil {
			return nil, fmt.Errorf("session %s: decode snapshot: %w", name, err)
		}
		opts = append(opts, engine.WithContent(&root))
		from = snap.Seq + 1
	}

	doc := engine.New(opts...)
	err = h.store.Scan(name, from, func(seq uint64, raw []byte) error {
		op, err := operation.Decode(raw)
		if err != nil {
			return fmt.Errorf("seq %d: %w", seq, err)
		}
		if err := doc.ApplyRemote(op, originReplay); err != nil {
			return fmt.Errorf("seq %d: %w", seq, err)
		}
		return nil
	})
	if err != nil {
		doc.Close()
		return nil, fmt.Errorf("session %s: replay: %w", name, err)
	}

	return &session{
		hub:     h,
		name:    name,
		doc:     doc,
		sub:     doc.Subscribe(),
		seq:     last,
		clients: make(map[uuid.UUID]*client),
		cursors: make(map[uuid.UUID]*refs.RangeRef),
	}, nil
}

// join attaches a connection and sends the greeting snapshot. The
// caller keeps ownership of the read loop; join starts the write pump.
func (s *session) join(conn *websocket.Conn) (*client, error) {
	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBacklog),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errRetired
	}

	root, err := s.doc.JSON()
	if err != nil {
		return nil, err
	}
	greeting, err := encodeSnapshot(s.name, s.seq, s.doc.Revision(), root)
	if err != nil {
		return nil, err
	}

	s.clients[c.id] = c
	activeClients.WithLabelValues(s.name).Inc()

	// Fresh buffered channel; cannot block.
	c.send <- greeting

	s.hub.wg.Add(1)
	go func() {
		defer s.hub.wg.Done()
		c.writePump(s.hub.ping)
	}()
	return c, nil
}

// leave detaches a connection. The last client out retires the session.
func (s *session) leave(c *client) {
	s.mu.Lock()
	if cur, ok := s.clients[c.id]; ok && cur == c {
		s.dropLocked(c.id)
	}
	empty := len(s.clients) == 0 && !s.closed
	s.mu.Unlock()

	if empty {
		s.hub.retire(s)
	}
}

// dropLocked removes one client and its cursor. Closing the send
// channel stops the write pump, which closes the socket.
func (s *session) dropLocked(id uuid.UUID) {
	c := s.clients[id]
	delete(s.clients, id)
	if ref, ok := s.cursors[id]; ok {
		ref.Unref()
		delete(s.cursors, id)
	}
	close(c.send)
	activeClients.WithLabelValues(s.name).Dec()
}

// ingest handles one inbound frame: decode, apply, persist, fan out.
// Selection frames are presence, not content; they skip the document
// and the oplog entirely.
func (s *session) ingest(c *client, raw []byte) {
	if debug.Wire() {
		s.hub.log.Debug("ws: frame in", "doc", s.name, "client", c.id, "frame", string(raw))
	}

	op, err := operation.Decode(raw)
	if err != nil {
		framesRejected.WithLabelValues(s.name, "decode").Inc()
		c.reject(err)
		return
	}

	if ss, ok := op.(operation.SetSelection); ok {
		s.updateCursor(c, ss)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err := s.doc.ApplyRemote(op, c.id.String()); err != nil {
		framesRejected.WithLabelValues(s.name, "apply").Inc()
		c.reject(err)
		return
	}

	// The feed buffered the change before ApplyRemote returned, and the
	// subscription is drained on every apply, so this never blocks. The
	// change carries the enriched operation, which is what the log and
	// the other clients need.
	ch := <-s.sub.C()

	if debug.Apply() {
		s.hub.log.Debug("ws: applied", "doc", s.name, "rev", ch.Revision, "op", operation.Describe(ch.Op))
	}

	s.seq++
	encoded, err := operation.Encode(ch.Op)
	if err != nil {
		s.hub.log.Error("ws: encode applied op", "doc", s.name, "err", err)
		return
	}
	if err := s.hub.store.Append(s.name, s.seq, encoded); err != nil {
		s.hub.log.Error("ws: oplog append", "doc", s.name, "seq", s.seq, "err", err)
	}
	opsApplied.WithLabelValues(s.name, ch.Op.Kind().String()).Inc()

	frame, err := encodeChange(s.seq, ch.Revision, ch.Origin, ch.Op)
	if err != nil {
		s.hub.log.Error("ws: encode change frame", "doc", s.name, "err", err)
		return
	}
	s.broadcastLocked(frame)
	s.sweepCursorsLocked()
}

// updateCursor replaces the sender's tracked selection and relays the
// frame to everyone. Tracked cursors rebase across later edits for
// free; a cursor that an edit destroys is counted and forgotten.
func (s *session) updateCursor(c *client, op operation.SetSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.clients[c.id]; !ok {
		return
	}

	if ref, ok := s.cursors[c.id]; ok {
		ref.Unref()
		delete(s.cursors, c.id)
	}
	if op.After != nil {
		s.cursors[c.id] = s.doc.TrackRange(*op.After, operation.RangeInward)
	}

	frame, err := encodeChange(s.seq, s.doc.Revision(), c.id.String(), op)
	if err != nil {
		s.hub.log.Error("ws: encode selection frame", "doc", s.name, "err", err)
		return
	}
	s.broadcastLocked(frame)
}

// broadcastLocked queues a frame for every client. A client whose
// backlog is full is dropped; stalling the whole document behind one
// slow reader is worse than one reconnect.
func (s *session) broadcastLocked(frame []byte) {
	for id, c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.hub.log.Warn("ws: dropping slow client", "doc", s.name, "client", id)
			s.dropLocked(id)
		}
	}
}

// sweepCursorsLocked forgets cursors whose ranges no longer exist.
func (s *session) sweepCursorsLocked() {
	for id, ref := range s.cursors {
		if _, ok := ref.Current(); !ok {
			ref.Unref()
			delete(s.cursors, id)
			rebaseInvalidations.WithLabelValues(s.name).Inc()
		}
	}
}

// retireLocked marks the session closed when no clients remain.
func (s *session) retireLocked() bool {
	if s.closed || len(s.clients) > 0 {
		return false
	}
	s.closed = true
	return true
}

// forceClose drops every client and shuts the session down. Used by
// Hub.Close; normal teardown goes through leave and retire.
func (s *session) forceClose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id := range s.clients {
		s.dropLocked(id)
	}
	s.mu.Unlock()
	s.shutdown()
}

// shutdown caches the materialized document for the next session and
// releases the engine. The session is already closed, so nothing else
// touches doc.
func (s *session) shutdown() {
	s.sub.Cancel()
	if root, err := s.doc.JSON(); err == nil {
		s.hub.store.CacheSnapshot(s.name, oplog.Snapshot{Seq: s.seq, Root: root})
	}
	s.doc.Close()
	s.hub.log.Info("ws: session retired", "doc", s.name, "seq", s.seq)
}

// Write pump tuning.
const (
	sendBacklog = 32
	writeWait   = 10 * time.Second
)

// client is one websocket connection. All writes go through send and
// the write pump; reads happen on the HTTP handler goroutine.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// reject queues an error envelope. Best effort: a client too far behind
// to take it is about to be dropped anyway.
func (c *client) reject(err error) {
	select {
	case c.send <- encodeError(err.Error()):
	default:
	}
}

// writePump owns every write on the connection, including pings. It
// exits when the send channel closes or a write fails, and closes the
// socket on the way out, which unblocks the read loop.
func (c *client) writePump(ping time.Duration) {
	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
