package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/oplog"
)

// DefaultPingInterval is how often idle connections are pinged when no
// interval is configured.
const DefaultPingInterval = 30 * time.Second

// maxFrameBytes caps inbound frames. Operations are small; anything
// bigger is a broken or hostile client.
const maxFrameBytes = 1 << 20

var (
	// ErrClosed is returned for work arriving after Close.
	ErrClosed = errors.New("server: hub is closed")

	// errRetired reports a join that raced the session's teardown. The
	// caller re-fetches the session and tries again.
	errRetired = errors.New("server: session retired")
)

// Hub relays operations between websocket clients editing the same
// documents. Each document gets one authoritative engine instance,
// materialized from the oplog on the first join and retired when the
// last client leaves.
type Hub struct {
	log   *slog.Logger
	store *oplog.Log
	ping  time.Duration

	docOpts  []engine.Option
	upgrader websocket.Upgrader

	mu       sync.Mutex // serializes session creation and retirement
	sessions *xsync.MapOf[string, *session]

	closed atomic.Bool
	wg     sync.WaitGroup
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		h.log = log
	}
}

// WithPingInterval sets how often idle connections are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.ping = d
		}
	}
}

// WithDocumentOptions sets extra options for every document the hub
// materializes, such as feed buffer sizing.
func WithDocumentOptions(opts ...engine.Option) Option {
	return func(h *Hub) {
		h.docOpts = opts
	}
}

// New creates a hub persisting to store. The store stays owned by the
// caller and must outlive the hub.
func New(store *oplog.Log, opts ...Option) *Hub {
	h := &Hub{
		log:      slog.Default(),
		store:    store,
		ping:     DefaultPingInterval,
		sessions: xsync.NewMapOf[string, *session](),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the HTTP surface: the websocket endpoint, a health
// probe, and prometheus metrics.
func (h *Hub) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/{doc}", h.handleSocket)
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (h *Hub) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// handleSocket upgrades the connection and runs its read loop until the
// client goes away.
func (h *Hub) handleSocket(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	name := mux.Vars(r)["doc"]

	s, err := h.session(name)
	if err != nil {
		h.log.Error("ws: open session", "doc", name, "err", err)
		if errors.Is(err, oplog.ErrBadDocID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "cannot open document", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn("ws: upgrade", "doc", name, "err", err)
		return
	}

	c, err := s.join(conn)
	for errors.Is(err, errRetired) {
		// The session was torn down between fetch and join. Rare; the
		// next fetch materializes a fresh one.
		if s, err = h.session(name); err == nil {
			c, err = s.join(conn)
		}
	}
	if err != nil {
		h.log.Error("ws: join", "doc", name, "err", err)
		conn.Close()
		return
	}
	h.log.Info("ws: client joined", "doc", name, "client", c.id)

	pongWait := 2 * h.ping
	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.ingest(c, raw)
	}

	s.leave(c)
	h.log.Info("ws: client left", "doc", name, "client", c.id)
}

// session returns the live session for name, materializing it on first
// use. Creation is serialized so two first joiners cannot replay the
// same document twice.
func (h *Hub) session(name string) (*session, error) {
	if s, ok := h.sessions.Load(name); ok {
		return s, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if s, ok := h.sessions.Load(name); ok {
		return s, nil
	}
	s, err := newSession(h, name)
	if err != nil {
		return nil, err
	}
	h.sessions.Store(name, s)
	return s, nil
}

// retire removes a session that believes it is empty. Re-checked under
// both locks; a client that joined in the meantime keeps it alive.
func (h *Hub) retire(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s.mu.Lock()
	ok := s.retireLocked()
	s.mu.Unlock()
	if !ok {
		return
	}

	h.sessions.Delete(s.name)
	s.shutdown()
}

// Close drops every client, caches a snapshot per live document, and
// waits for the write pumps to drain. The oplog store is left open for
// the owner to close.
func (h *Hub) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}

	h.sessions.Range(func(_ string, s *session) bool {
		s.forceClose()
		return true
	})
	h.sessions.Clear()
	h.wg.Wait()
}
