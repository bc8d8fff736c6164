package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"

	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Scenario is a replayable recording: a starting tree, the locations to
// trace, and the operations to apply.
type Scenario struct {
	Name       string
	Root       *node.Node
	Tracks     []Track
	Operations []operation.Operation
}

// TrackKind says which shape of location a track entry watches.
type TrackKind int

const (
	// TrackPath watches a node path.
	TrackPath TrackKind = iota

	// TrackPoint watches a text position.
	TrackPoint

	// TrackRange watches a selection.
	TrackRange
)

// Track is one location to trace through the scenario. Exactly one of
// Path, Point, or Range is meaningful, selected by Kind.
type Track struct {
	Name  string
	Kind  TrackKind
	Path  path.Path
	Point selection.Point
	Range selection.Range

	// Affinity applies to path and point tracks; RangeAffinity to range
	// tracks.
	Affinity      path.Affinity
	RangeAffinity operation.RangeAffinity
}

// Start renders the track's initial location.
func (t Track) Start() string {
	switch t.Kind {
	case TrackPoint:
		return t.Point.String()
	case TrackRange:
		return t.Range.String()
	default:
		return t.Path.String()
	}
}

// Describe renders the track's shape and affinity for reporting, such
// as "point [0.0]:3, backward".
func (t Track) Describe() string {
	switch t.Kind {
	case TrackPoint:
		return fmt.Sprintf("point %s, %s", t.Point, t.Affinity)
	case TrackRange:
		return fmt.Sprintf("range %s, %s", t.Range, t.RangeAffinity)
	default:
		return fmt.Sprintf("path %s, %s", t.Path, t.Affinity)
	}
}

// Load reads and parses the scenario file at name.
func Load(name string) (*Scenario, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", name, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	return sc, nil
}

// Parse decodes a scenario from YAML or JSON bytes.
func Parse(data []byte) (*Scenario, error) {
	js, err := canonicalJSON(data)
	if err != nil {
		return nil, err
	}

	top := gjson.ParseBytes(js)
	if !top.IsObject() {
		return nil, ErrNotScenario
	}

	sc := &Scenario{Name: top.Get("name").String()}

	doc := top.Get("document")
	if !doc.Exists() {
		return nil, ErrNoDocument
	}
	root := &node.Node{}
	if err := json.Unmarshal([]byte(doc.Raw), root); err != nil {
		return nil, &ScenarioError{Field: "document", Message: err.Error(), Err: err}
	}
	sc.Root = root

	for i, entry := range top.Get("track").Array() {
		t, err := parseTrack(i, entry)
		if err != nil {
			return nil, err
		}
		sc.Tracks = append(sc.Tracks, t)
	}

	for i, entry := range top.Get("operations").Array() {
		op, err := operation.Decode([]byte(entry.Raw))
		if err != nil {
			field := fmt.Sprintf("operations[%d]", i)
			return nil, &ScenarioError{Field: field, Message: err.Error(), Err: err}
		}
		sc.Operations = append(sc.Operations, op)
	}

	return sc, nil
}

// ParseTree decodes a bare document tree from YAML or JSON bytes. A
// full scenario is accepted too and contributes its document.
func ParseTree(data []byte) (*node.Node, error) {
	js, err := canonicalJSON(data)
	if err != nil {
		return nil, err
	}

	top := gjson.ParseBytes(js)
	if !top.IsObject() {
		return nil, ErrNotScenario
	}
	if doc := top.Get("document"); doc.Exists() {
		js = []byte(doc.Raw)
	}

	root := &node.Node{}
	if err := json.Unmarshal(js, root); err != nil {
		return nil, &ScenarioError{Field: "document", Message: err.Error(), Err: err}
	}
	return root, nil
}

// canonicalJSON returns the scenario bytes as JSON. Input that already
// parses as JSON passes through; everything else is treated as YAML and
// rewritten.
func canonicalJSON(data []byte) ([]byte, error) {
	if gjson.ValidBytes(data) {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parsing scenario yaml: %w", err)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rewriting scenario as json: %w", err)
	}
	return js, nil
}

// parseTrack decodes one entry of the track list. Entries carry exactly
// one locator key; unnamed entries get a positional name.
func parseTrack(i int, entry gjson.Result) (Track, error) {
	field := fmt.Sprintf("track[%d]", i)

	t := Track{Name: entry.Get("name").String()}
	if t.Name == "" {
		t.Name = fmt.Sprintf("track-%d", i+1)
	}
	affinity := entry.Get("affinity").String()

	switch {
	case entry.Get("path").Exists():
		p, err := decodePath(field+".path", entry.Get("path"))
		if err != nil {
			return Track{}, err
		}
		aff, err := parseAffinity(field, affinity)
		if err != nil {
			return Track{}, err
		}
		t.Kind, t.Path, t.Affinity = TrackPath, p, aff

	case entry.Get("point").Exists():
		pt, err := decodePoint(field+".point", entry.Get("point"))
		if err != nil {
			return Track{}, err
		}
		aff, err := parseAffinity(field, affinity)
		if err != nil {
			return Track{}, err
		}
		t.Kind, t.Point, t.Affinity = TrackPoint, pt, aff

	case entry.Get("range").Exists():
		r := entry.Get("range")
		anchor, err := decodePoint(field+".range.anchor", r.Get("anchor"))
		if err != nil {
			return Track{}, err
		}
		focus, err := decodePoint(field+".range.focus", r.Get("focus"))
		if err != nil {
			return Track{}, err
		}
		aff, err := parseRangeAffinity(field, affinity)
		if err != nil {
			return Track{}, err
		}
		t.Kind, t.Range, t.RangeAffinity = TrackRange, selection.NewRange(anchor, focus), aff

	default:
		return Track{}, &ScenarioError{Field: field, Message: "needs one of path, point, or range"}
	}

	return t, nil
}

func decodePath(field string, res gjson.Result) (path.Path, error) {
	if !res.IsArray() {
		return nil, &ScenarioError{Field: field, Message: "must be an array of indices"}
	}
	arr := res.Array()
	p := make(path.Path, 0, len(arr))
	for _, v := range arr {
		p = append(p, int(v.Int()))
	}
	return p, nil
}

func decodePoint(field string, res gjson.Result) (selection.Point, error) {
	if !res.IsObject() {
		return selection.Point{}, &ScenarioError{Field: field, Message: "must be a mapping with path and offset"}
	}
	p, err := decodePath(field+".path", res.Get("path"))
	if err != nil {
		return selection.Point{}, err
	}
	return selection.NewPoint(p, int(res.Get("offset").Int())), nil
}

// parseAffinity maps the scenario spelling of an affinity. The empty
// string picks the rebasing default.
func parseAffinity(field, s string) (path.Affinity, error) {
	switch s {
	case "", "forward":
		return path.Forward, nil
	case "backward":
		return path.Backward, nil
	case "none":
		return path.None, nil
	}
	return 0, &ScenarioError{Field: field, Message: fmt.Sprintf("unknown affinity %q", s)}
}

func parseRangeAffinity(field, s string) (operation.RangeAffinity, error) {
	switch s {
	case "", "inward":
		return operation.RangeInward, nil
	case "outward":
		return operation.RangeOutward, nil
	case "forward":
		return operation.RangeForward, nil
	case "backward":
		return operation.RangeBackward, nil
	case "none":
		return operation.RangeNone, nil
	}
	return 0, &ScenarioError{Field: field, Message: fmt.Sprintf("unknown range affinity %q", s)}
}
