package server

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/loomkit/loom/internal/engine/operation"
)

// Server-to-client envelope types. Clients dispatch on the top-level
// "type" field; operation type names never collide with these.
const (
	frameSnapshot = "snapshot"
	frameChange   = "change"
	frameError    = "error"
)

// encodeSnapshot renders the session greeting: the document tree plus
// the log position the client resumes from.
func encodeSnapshot(doc string, seq, rev uint64, root []byte) ([]byte, error) {
	buf := []byte(`{}`)
	var err error
	if buf, err = sjson.SetBytes(buf, "type", frameSnapshot); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "doc", doc); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "seq", seq); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "rev", rev); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetRawBytes(buf, "root", root); err != nil {
		return nil, err
	}
	return buf, nil
}

// encodeChange renders one applied operation for fan-out. Origin is the
// client id that sent the operation, so senders can recognize their own
// echoes.
func encodeChange(seq, rev uint64, origin string, op operation.Operation) ([]byte, error) {
	raw, err := operation.Encode(op)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", operation.Describe(op), err)
	}
	buf := []byte(`{}`)
	if buf, err = sjson.SetBytes(buf, "type", frameChange); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "seq", seq); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "rev", rev); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetBytes(buf, "origin", origin); err != nil {
		return nil, err
	}
	if buf, err = sjson.SetRawBytes(buf, "op", raw); err != nil {
		return nil, err
	}
	return buf, nil
}

// encodeError renders a rejection. The connection stays open; the
// client decides whether to resync.
func encodeError(msg string) []byte {
	buf := []byte(`{}`)
	buf, _ = sjson.SetBytes(buf, "type", frameError)
	buf, _ = sjson.SetBytes(buf, "error", msg)
	return buf
}
