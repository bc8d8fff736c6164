package operation

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Decode parses a single wire operation. The payload must be a JSON
// object with a string "type" field; the remaining fields depend on the
// type. Payloads whose type this version does not recognize decode to
// an Unknown carrying the raw bytes, so logs and relays can pass them
// through without loss.
func Decode(data []byte) (Operation, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode: invalid JSON: %w", ErrBadWire)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("decode: not an object: %w", ErrBadWire)
	}
	typ := doc.Get("type")
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("decode: missing type: %w", ErrBadWire)
	}

	switch typ.Str {
	case "insert_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode insert_node: %w", err)
		}
		n, err := decodeNode(doc.Get("node"))
		if err != nil {
			return nil, fmt.Errorf("decode insert_node: %w", err)
		}
		return InsertNode{Path: p, Node: n}, nil

	case "remove_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode remove_node: %w", err)
		}
		n, err := decodeNode(doc.Get("node"))
		if err != nil {
			return nil, fmt.Errorf("decode remove_node: %w", err)
		}
		return RemoveNode{Path: p, Node: n}, nil

	case "merge_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode merge_node: %w", err)
		}
		pos, err := decodeInt(doc.Get("position"))
		if err != nil {
			return nil, fmt.Errorf("decode merge_node position: %w", err)
		}
		props, err := decodeProps(doc.Get("properties"))
		if err != nil {
			return nil, fmt.Errorf("decode merge_node: %w", err)
		}
		return MergeNode{Path: p, Position: pos, Props: props}, nil

	case "split_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode split_node: %w", err)
		}
		pos, err := decodeInt(doc.Get("position"))
		if err != nil {
			return nil, fmt.Errorf("decode split_node position: %w", err)
		}
		props, err := decodeProps(doc.Get("properties"))
		if err != nil {
			return nil, fmt.Errorf("decode split_node: %w", err)
		}
		return SplitNode{Path: p, Position: pos, Props: props}, nil

	case "move_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode move_node: %w", err)
		}
		np, err := decodePath(doc.Get("newPath"))
		if err != nil {
			return nil, fmt.Errorf("decode move_node newPath: %w", err)
		}
		return MoveNode{Path: p, NewPath: np}, nil

	case "insert_text":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode insert_text: %w", err)
		}
		off, err := decodeInt(doc.Get("offset"))
		if err != nil {
			return nil, fmt.Errorf("decode insert_text offset: %w", err)
		}
		return InsertText{Path: p, Offset: off, Text: doc.Get("text").Str}, nil

	case "remove_text":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode remove_text: %w", err)
		}
		off, err := decodeInt(doc.Get("offset"))
		if err != nil {
			return nil, fmt.Errorf("decode remove_text offset: %w", err)
		}
		return RemoveText{Path: p, Offset: off, Text: doc.Get("text").Str}, nil

	case "set_node":
		p, err := decodePath(doc.Get("path"))
		if err != nil {
			return nil, fmt.Errorf("decode set_node: %w", err)
		}
		props, err := decodeProps(doc.Get("properties"))
		if err != nil {
			return nil, fmt.Errorf("decode set_node: %w", err)
		}
		newProps, err := decodeProps(doc.Get("newProperties"))
		if err != nil {
			return nil, fmt.Errorf("decode set_node: %w", err)
		}
		return SetNode{Path: p, Props: props, NewProps: newProps}, nil

	case "set_selection":
		before, err := decodeRange(doc.Get("properties"))
		if err != nil {
			return nil, fmt.Errorf("decode set_selection: %w", err)
		}
		after, err := decodeRange(doc.Get("newProperties"))
		if err != nil {
			return nil, fmt.Errorf("decode set_selection: %w", err)
		}
		return SetSelection{Before: before, After: after}, nil

	default:
		raw := make([]byte, len(data))
		copy(raw, data)
		return Unknown{Type: typ.Str, Raw: raw}, nil
	}
}

// Encode renders op as its wire JSON. Decode(Encode(op)) yields an
// operation equal to op for every known kind; Unknown round-trips its
// raw payload untouched.
func Encode(op Operation) ([]byte, error) {
	w := wire{buf: []byte(`{}`)}
	w.set("type", op.Kind().String())

	switch o := op.(type) {
	case InsertNode:
		w.setPath("path", o.Path)
		w.setNode("node", o.Node)
	case RemoveNode:
		w.setPath("path", o.Path)
		w.setNode("node", o.Node)
	case MergeNode:
		w.setPath("path", o.Path)
		w.set("position", o.Position)
		w.setProps("properties", o.Props)
	case SplitNode:
		w.setPath("path", o.Path)
		w.set("position", o.Position)
		w.setProps("properties", o.Props)
	case MoveNode:
		w.setPath("path", o.Path)
		w.setPath("newPath", o.NewPath)
	case InsertText:
		w.setPath("path", o.Path)
		w.set("offset", o.Offset)
		w.set("text", o.Text)
	case RemoveText:
		w.setPath("path", o.Path)
		w.set("offset", o.Offset)
		w.set("text", o.Text)
	case SetNode:
		w.setPath("path", o.Path)
		w.setProps("properties", o.Props)
		w.setProps("newProperties", o.NewProps)
	case SetSelection:
		w.setRange("properties", o.Before)
		w.setRange("newProperties", o.After)
	case Unknown:
		if !gjson.ValidBytes(o.Raw) {
			return nil, fmt.Errorf("encode unknown %q: %w", o.Type, ErrBadWire)
		}
		raw := make([]byte, len(o.Raw))
		copy(raw, o.Raw)
		return raw, nil
	}
	return w.buf, w.err
}

// wire accumulates sjson writes and latches the first error so encode
// branches stay flat.
type wire struct {
	buf []byte
	err error
}

func (w *wire) set(key string, value any) {
	if w.err != nil {
		return
	}
	w.buf, w.err = sjson.SetBytes(w.buf, key, value)
}

func (w *wire) setRaw(key string, raw []byte) {
	if w.err != nil {
		return
	}
	w.buf, w.err = sjson.SetRawBytes(w.buf, key, raw)
}

func (w *wire) setPath(key string, p path.Path) {
	if p == nil {
		p = path.Root
	}
	w.set(key, []int(p))
}

func (w *wire) setNode(key string, n *node.Node) {
	if w.err != nil {
		return
	}
	if n == nil {
		w.err = fmt.Errorf("encode %s: nil node: %w", key, ErrBadWire)
		return
	}
	raw, err := json.Marshal(n)
	if err != nil {
		w.err = err
		return
	}
	w.setRaw(key, raw)
}

func (w *wire) setProps(key string, props node.Props) {
	if len(props) == 0 {
		w.setRaw(key, []byte(`{}`))
		return
	}
	w.set(key, map[string]any(props))
}

func (w *wire) setRange(key string, r *selection.Range) {
	if r == nil {
		w.setRaw(key, []byte(`null`))
		return
	}
	w.setPath(key+".anchor.path", r.Anchor.Path)
	w.set(key+".anchor.offset", r.Anchor.Offset)
	w.setPath(key+".focus.path", r.Focus.Path)
	w.set(key+".focus.offset", r.Focus.Offset)
}

func decodePath(res gjson.Result) (path.Path, error) {
	if !res.IsArray() {
		return nil, fmt.Errorf("path is not an array: %w", ErrBadWire)
	}
	elems := res.Array()
	p := make(path.Path, 0, len(elems))
	for _, el := range elems {
		if el.Type != gjson.Number {
			return nil, fmt.Errorf("path index %q is not a number: %w", el.Raw, ErrBadWire)
		}
		p = append(p, int(el.Int()))
	}
	return p, nil
}

func decodeInt(res gjson.Result) (int, error) {
	if res.Type != gjson.Number {
		return 0, fmt.Errorf("not a number: %w", ErrBadWire)
	}
	return int(res.Int()), nil
}

func decodeNode(res gjson.Result) (*node.Node, error) {
	if !res.IsObject() {
		return nil, fmt.Errorf("node is not an object: %w", ErrBadWire)
	}
	var n node.Node
	if err := json.Unmarshal([]byte(res.Raw), &n); err != nil {
		return nil, fmt.Errorf("node: %w", err)
	}
	return &n, nil
}

func decodeProps(res gjson.Result) (node.Props, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("properties is not an object: %w", ErrBadWire)
	}
	m, ok := res.Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("properties: %w", ErrBadWire)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return node.Props(m), nil
}

func decodePoint(res gjson.Result) (selection.Point, error) {
	p, err := decodePath(res.Get("path"))
	if err != nil {
		return selection.Point{}, err
	}
	off, err := decodeInt(res.Get("offset"))
	if err != nil {
		return selection.Point{}, fmt.Errorf("offset: %w", err)
	}
	return selection.NewPoint(p, off), nil
}

func decodeRange(res gjson.Result) (*selection.Range, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("range is not an object: %w", ErrBadWire)
	}
	anchor, err := decodePoint(res.Get("anchor"))
	if err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	focus, err := decodePoint(res.Get("focus"))
	if err != nil {
		return nil, fmt.Errorf("focus: %w", err)
	}
	r := selection.NewRange(anchor, focus)
	return &r, nil
}
