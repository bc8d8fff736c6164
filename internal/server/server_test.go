package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/loomkit/loom/internal/oplog"
)

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	store, err := oplog.Open(t.TempDir())
	require.NoError(t, err)

	h := New(store, quiet())
	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		srv.Close()
		h.Close()
		require.NoError(t, store.Close())
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, doc string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + doc
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) gjson.Result {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	return gjson.ParseBytes(raw)
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func TestHealthz(t *testing.T) {
	_, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(body))
}

func TestMetricsExposed(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "metrics-doc")
	readFrame(t, conn) // snapshot
	send(t, conn, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[]}}`)
	readFrame(t, conn) // echo

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "loom_server_ops_applied_total")
	assert.Contains(t, string(body), "loom_server_active_clients")
}

func TestSnapshotOnJoin(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "greeting")
	snap := readFrame(t, conn)

	assert.Equal(t, "snapshot", snap.Get("type").String())
	assert.Equal(t, "greeting", snap.Get("doc").String())
	assert.EqualValues(t, 0, snap.Get("seq").Int())
	assert.EqualValues(t, 0, snap.Get("rev").Int())
	assert.Equal(t, "doc", snap.Get("root.type").String())
	assert.True(t, snap.Get("root.children").IsArray())
}

func TestEchoAndFanout(t *testing.T) {
	_, srv := newTestHub(t)

	left := dial(t, srv, "shared")
	readFrame(t, left)
	right := dial(t, srv, "shared")
	readFrame(t, right)

	send(t, left, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"hi"}]}}`)

	for _, conn := range []*websocket.Conn{left, right} {
		frame := readFrame(t, conn)
		assert.Equal(t, "change", frame.Get("type").String())
		assert.EqualValues(t, 1, frame.Get("seq").Int())
		assert.EqualValues(t, 1, frame.Get("rev").Int())
		assert.NotEmpty(t, frame.Get("origin").String())
		assert.Equal(t, "insert_node", frame.Get("op.type").String())
		assert.Equal(t, "hi", frame.Get("op.node.children.0.text").String())
	}
}

func TestSequentialOrder(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "ordered")
	readFrame(t, conn)

	send(t, conn, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"a"}]}}`)
	send(t, conn, `{"type":"insert_text","path":[0,0],"offset":1,"text":"b"}`)
	send(t, conn, `{"type":"insert_text","path":[0,0],"offset":2,"text":"c"}`)

	for want := 1; want <= 3; want++ {
		frame := readFrame(t, conn)
		assert.EqualValues(t, want, frame.Get("seq").Int(), "frame %d", want)
	}
}

func TestChangeCarriesEnrichedOp(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "enriched")
	readFrame(t, conn)

	send(t, conn, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"hello"}]}}`)
	readFrame(t, conn)

	// The client does not know what the removal takes out; the echoed
	// operation does.
	send(t, conn, `{"type":"remove_text","path":[0,0],"offset":1,"text":"???"}`)
	frame := readFrame(t, conn)

	assert.Equal(t, "remove_text", frame.Get("op.type").String())
	assert.Equal(t, "ell", frame.Get("op.text").String())
}

func TestRejectsUndecodableFrame(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "garbage")
	readFrame(t, conn)

	send(t, conn, `{"path":[0]}`)
	frame := readFrame(t, conn)

	assert.Equal(t, "error", frame.Get("type").String())
	assert.NotEmpty(t, frame.Get("error").String())

	// The connection survives rejection.
	send(t, conn, `{"type":"insert_node","path":[0],"node":{"text":"still here"}}`)
	next := readFrame(t, conn)
	assert.Equal(t, "change", next.Get("type").String())
}

func TestRejectsInapplicableOp(t *testing.T) {
	_, srv := newTestHub(t)

	conn := dial(t, srv, "apply-fail")
	readFrame(t, conn)

	send(t, conn, `{"type":"remove_node","path":[7],"node":{"text":"x"}}`)
	frame := readFrame(t, conn)

	assert.Equal(t, "error", frame.Get("type").String())

	// Rejected frames take no sequence number.
	send(t, conn, `{"type":"insert_node","path":[0],"node":{"text":"x"}}`)
	next := readFrame(t, conn)
	assert.EqualValues(t, 1, next.Get("seq").Int())
}

func TestSelectionRelayedNotPersisted(t *testing.T) {
	_, srv := newTestHub(t)

	left := dial(t, srv, "presence")
	readFrame(t, left)
	send(t, left, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"hello"}]}}`)
	readFrame(t, left)

	right := dial(t, srv, "presence")
	readFrame(t, right)

	sel := `{"type":"set_selection","newProperties":{` +
		`"anchor":{"path":[0,0],"offset":1},"focus":{"path":[0,0],"offset":3}}}`
	send(t, left, sel)

	frame := readFrame(t, right)
	assert.Equal(t, "change", frame.Get("type").String())
	assert.Equal(t, "set_selection", frame.Get("op.type").String())
	assert.EqualValues(t, 1, frame.Get("op.newProperties.anchor.offset").Int())
	// Presence takes no sequence number.
	assert.EqualValues(t, 1, frame.Get("seq").Int())

	// A fresh join sees the content edit but no selection in the log.
	late := dial(t, srv, "presence")
	snap := readFrame(t, late)
	assert.EqualValues(t, 1, snap.Get("seq").Int())
}

func TestUnknownOpRelayed(t *testing.T) {
	_, srv := newTestHub(t)

	left := dial(t, srv, "custom")
	readFrame(t, left)
	right := dial(t, srv, "custom")
	readFrame(t, right)

	send(t, left, `{"type":"annotate","path":[0],"color":"red"}`)

	frame := readFrame(t, right)
	assert.Equal(t, "change", frame.Get("type").String())
	assert.Equal(t, "annotate", frame.Get("op.type").String())
	assert.Equal(t, "red", frame.Get("op.color").String())
	assert.EqualValues(t, 1, frame.Get("seq").Int())
}

func TestPersistenceAcrossHubs(t *testing.T) {
	store, err := oplog.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	h1 := New(store, quiet())
	srv1 := httptest.NewServer(h1.Router())

	url := "ws" + strings.TrimPrefix(srv1.URL, "http") + "/ws/durable"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readFrame(t, conn)

	send(t, conn, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"first"}]}}`)
	readFrame(t, conn)
	send(t, conn, `{"type":"insert_text","path":[0,0],"offset":5,"text":" draft"}`)
	readFrame(t, conn)

	conn.Close()
	srv1.Close()
	h1.Close()

	h2 := New(store, quiet())
	srv2 := httptest.NewServer(h2.Router())
	defer func() {
		srv2.Close()
		h2.Close()
	}()

	url = "ws" + strings.TrimPrefix(srv2.URL, "http") + "/ws/durable"
	conn2, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn2.Close()

	snap := readFrame(t, conn2)
	assert.Equal(t, "snapshot", snap.Get("type").String())
	assert.EqualValues(t, 2, snap.Get("seq").Int())
	assert.Equal(t, "first draft", snap.Get("root.children.0.children.0.text").String())
}

func TestDocumentsAreIsolated(t *testing.T) {
	_, srv := newTestHub(t)

	alpha := dial(t, srv, "alpha")
	readFrame(t, alpha)
	beta := dial(t, srv, "beta")
	readFrame(t, beta)

	send(t, alpha, `{"type":"insert_node","path":[0],"node":{"text":"alpha only"}}`)
	readFrame(t, alpha)

	// Beta sees nothing; its own edit is its first sequence number.
	send(t, beta, `{"type":"insert_node","path":[0],"node":{"text":"beta only"}}`)
	frame := readFrame(t, beta)
	assert.EqualValues(t, 1, frame.Get("seq").Int())
	assert.Equal(t, "beta only", frame.Get("op.node.text").String())
}

func TestLateJoinerSeesReplayedState(t *testing.T) {
	_, srv := newTestHub(t)

	first := dial(t, srv, "replayed")
	readFrame(t, first)
	send(t, first, `{"type":"insert_node","path":[0],"node":{"type":"paragraph","children":[{"text":"abc"}]}}`)
	readFrame(t, first)
	send(t, first, `{"type":"split_node","path":[0,0],"position":1,"properties":{}}`)
	readFrame(t, first)

	late := dial(t, srv, "replayed")
	snap := readFrame(t, late)

	assert.EqualValues(t, 2, snap.Get("seq").Int())
	assert.Equal(t, "a", snap.Get("root.children.0.children.0.text").String())
	assert.Equal(t, "bc", snap.Get("root.children.0.children.1.text").String())
}

func TestHubCloseRejectsNewConnections(t *testing.T) {
	store, err := oplog.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	h := New(store, quiet())
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/closed"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
