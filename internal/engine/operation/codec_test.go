package operation

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/path"
)

func TestDecodeInsertNode(t *testing.T) {
	data := []byte(`{"type": "insert_node", "path": [1, 0], "node": {"text": "hi", "bold": true}}`)

	op, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ins, ok := op.(InsertNode)
	if !ok {
		t.Fatalf("expected InsertNode, got %T", op)
	}
	if !path.Equals(ins.Path, path.Path{1, 0}) {
		t.Errorf("expected path [1.0], got %v", ins.Path)
	}
	if !ins.Node.IsText() || ins.Node.Text != "hi" {
		t.Errorf("expected text node %q, got %v", "hi", ins.Node)
	}
	if ins.Node.Props["bold"] != true {
		t.Errorf("expected bold prop, got %v", ins.Node.Props)
	}
}

func TestDecodeMergeNode(t *testing.T) {
	data := []byte(`{"type": "merge_node", "path": [2], "position": 3, "properties": {"kind": "paragraph"}}`)

	op, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mg, ok := op.(MergeNode)
	if !ok {
		t.Fatalf("expected MergeNode, got %T", op)
	}
	if mg.Position != 3 {
		t.Errorf("expected position 3, got %d", mg.Position)
	}
	if mg.Props["kind"] != "paragraph" {
		t.Errorf("expected kind prop, got %v", mg.Props)
	}
}

func TestDecodeMoveNode(t *testing.T) {
	data := []byte(`{"type": "move_node", "path": [0, 1], "newPath": [2]}`)

	op, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mv, ok := op.(MoveNode)
	if !ok {
		t.Fatalf("expected MoveNode, got %T", op)
	}
	if !path.Equals(mv.Path, path.Path{0, 1}) || !path.Equals(mv.NewPath, path.Path{2}) {
		t.Errorf("expected [0.1] -> [2], got %v -> %v", mv.Path, mv.NewPath)
	}
}

func TestDecodeSetSelection(t *testing.T) {
	data := []byte(`{
		"type": "set_selection",
		"properties": null,
		"newProperties": {
			"anchor": {"path": [0, 0], "offset": 1},
			"focus": {"path": [0, 0], "offset": 4}
		}
	}`)

	op, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sel, ok := op.(SetSelection)
	if !ok {
		t.Fatalf("expected SetSelection, got %T", op)
	}
	if sel.Before != nil {
		t.Errorf("expected nil before, got %v", sel.Before)
	}
	if sel.After == nil || sel.After.Anchor.Offset != 1 || sel.After.Focus.Offset != 4 {
		t.Errorf("unexpected after range: %v", sel.After)
	}
}

func TestDecodeUnknownTypePassesThrough(t *testing.T) {
	data := []byte(`{"type": "set_mark", "path": [0], "mark": "strong"}`)

	op, err := Decode(data)
	if err != nil {
		t.Fatalf("unknown types must decode without error, got %v", err)
	}
	unk, ok := op.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", op)
	}
	if unk.Type != "set_mark" {
		t.Errorf("expected type set_mark, got %q", unk.Type)
	}

	// The raw payload survives encode untouched.
	out, err := Encode(unk)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if string(out) != string(data) {
		t.Errorf("unknown payload should round-trip byte for byte, got %s", out)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"type": `},
		{"not an object", `[1, 2, 3]`},
		{"missing type", `{"path": [0]}`},
		{"non-string type", `{"type": 7}`},
		{"path not an array", `{"type": "remove_node", "path": "nope", "node": {"text": ""}}`},
		{"missing position", `{"type": "split_node", "path": [0]}`},
	}

	for _, tt := range tests {
		_, err := Decode([]byte(tt.data))
		if !errors.Is(err, ErrBadWire) {
			t.Errorf("%s: expected ErrBadWire, got %v", tt.name, err)
		}
	}
}

func TestEncodeSplitNode(t *testing.T) {
	op := SplitNode{Path: path.Path{1, 2}, Position: 4, Props: node.Props{"kind": "paragraph"}}

	out, err := Encode(op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := gjson.ParseBytes(out)
	if doc.Get("type").Str != "split_node" {
		t.Errorf("expected type split_node, got %s", doc.Get("type").Str)
	}
	if doc.Get("path").Raw != "[1,2]" {
		t.Errorf("expected path [1,2], got %s", doc.Get("path").Raw)
	}
	if doc.Get("position").Int() != 4 {
		t.Errorf("expected position 4, got %d", doc.Get("position").Int())
	}
	if doc.Get("properties.kind").Str != "paragraph" {
		t.Errorf("expected properties.kind, got %s", doc.Get("properties").Raw)
	}
}

func TestEncodeRootPathIsEmptyArray(t *testing.T) {
	op := MoveNode{Path: path.Path{0}, NewPath: path.Root}

	out, err := Encode(op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gjson.GetBytes(out, "newPath").Raw != "[]" {
		t.Errorf("root should encode as [], got %s", gjson.GetBytes(out, "newPath").Raw)
	}
}

func TestEncodeNilNodeFails(t *testing.T) {
	_, err := Encode(InsertNode{Path: path.Path{0}})
	if !errors.Is(err, ErrBadWire) {
		t.Errorf("expected ErrBadWire for a nil node, got %v", err)
	}
}

func TestWireRoundTripEveryKind(t *testing.T) {
	ops := []Operation{
		InsertNode{Path: path.Path{0, 2}, Node: node.NewText("x")},
		RemoveNode{Path: path.Path{1}, Node: node.NewElement("paragraph", node.NewText("y"))},
		MergeNode{Path: path.Path{1}, Position: 2, Props: node.Props{"kind": "quote"}},
		SplitNode{Path: path.Path{0}, Position: 1, Props: nil},
		MoveNode{Path: path.Path{0}, NewPath: path.Path{1, 0}},
		InsertText{Path: path.Path{0, 0}, Offset: 3, Text: "abc"},
		RemoveText{Path: path.Path{0, 0}, Offset: 0, Text: "a"},
		SetNode{Path: path.Path{0}, Props: node.Props{"align": "left"}, NewProps: node.Props{"align": "right"}},
	}

	for _, op := range ops {
		data, err := Encode(op)
		if err != nil {
			t.Errorf("%s: encode: %v", Describe(op), err)
			continue
		}
		back, err := Decode(data)
		if err != nil {
			t.Errorf("%s: decode: %v", Describe(op), err)
			continue
		}
		if back.Kind() != op.Kind() {
			t.Errorf("%s: round trip changed kind to %s", Describe(op), back.Kind())
		}
	}
}
