package node

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reserved JSON keys; everything else round-trips through Props.
const (
	keyText     = "text"
	keyType     = "type"
	keyChildren = "children"
)

// MarshalJSON renders the node in its wire form: text leaves as
// {"text": ...}, elements as {"type": ..., "children": [...]}, with
// property entries folded in as sibling keys.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(n.Props)+2)
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == keyText || k == keyType || k == keyChildren {
			continue
		}
		raw, err := json.Marshal(n.Props[k])
		if err != nil {
			return nil, fmt.Errorf("marshal node prop %q: %w", k, err)
		}
		m[k] = raw
	}

	if n.IsText() {
		raw, err := json.Marshal(n.Text)
		if err != nil {
			return nil, err
		}
		m[keyText] = raw
		return json.Marshal(m)
	}

	if n.Type != "" {
		raw, err := json.Marshal(n.Type)
		if err != nil {
			return nil, err
		}
		m[keyType] = raw
	}
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return nil, err
	}
	m[keyChildren] = raw
	return json.Marshal(m)
}

// UnmarshalJSON parses the wire form produced by MarshalJSON. A "text"
// key makes the node a leaf; otherwise it is an element whose "children"
// default to empty. Unreserved keys become properties.
func (n *Node) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshal node: %w", err)
	}

	*n = Node{}
	if raw, ok := m[keyText]; ok {
		n.Kind = Text
		if err := json.Unmarshal(raw, &n.Text); err != nil {
			return fmt.Errorf("unmarshal node text: %w", err)
		}
	} else {
		n.Kind = Element
		if raw, ok := m[keyType]; ok {
			if err := json.Unmarshal(raw, &n.Type); err != nil {
				return fmt.Errorf("unmarshal node type: %w", err)
			}
		}
		n.Children = []*Node{}
		if raw, ok := m[keyChildren]; ok {
			if err := json.Unmarshal(raw, &n.Children); err != nil {
				return fmt.Errorf("unmarshal node children: %w", err)
			}
		}
	}

	for k, raw := range m {
		if k == keyText || k == keyType || k == keyChildren {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("unmarshal node prop %q: %w", k, err)
		}
		if n.Props == nil {
			n.Props = Props{}
		}
		n.Props[k] = v
	}
	return nil
}
