package replay

import (
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/engine/node"
	"github.com/loomkit/loom/internal/engine/operation"
)

// Result is the outcome of replaying a scenario.
type Result struct {
	Scenario *Scenario
	Final    *node.Node
	Revision uint64
	Journeys []Journey
}

// Journey traces one tracked location across the operation list.
type Journey struct {
	Track  Track
	Visits []Visit

	// Alive reports whether the location still exists after the last
	// operation; Where is its final rendering when it does.
	Alive bool
	Where string

	// Moves counts the operations that relocated the location.
	Moves int

	// KilledBy is the index of the operation that invalidated the
	// location, or -1 while it survives.
	KilledBy int
}

// Visit records where a tracked location stood after one operation.
// Journeys stop visiting once the location is gone, so a dead journey's
// last visit is the one that killed it.
type Visit struct {
	Index int
	Op    operation.Operation
	Where string
	Alive bool
	Moved bool
}

// Run replays the scenario against a fresh document. It returns a
// StepError when the document rejects an operation; the journeys cover
// the operations applied up to that point.
func Run(sc *Scenario) (*Result, error) {
	doc := engine.New(engine.WithContent(sc.Root))
	defer doc.Close()

	current := make([]func() (string, bool), len(sc.Tracks))
	journeys := make([]Journey, len(sc.Tracks))
	for i, t := range sc.Tracks {
		current[i] = trackRef(doc, t)
		where, _ := current[i]()
		journeys[i] = Journey{Track: t, Alive: true, Where: where, KilledBy: -1}
	}

	res := &Result{Scenario: sc, Journeys: journeys}

	for i, op := range sc.Operations {
		if err := doc.Apply(op); err != nil {
			res.Final = doc.Root()
			res.Revision = doc.Revision()
			return res, &StepError{Index: i, Kind: op.Kind().String(), Err: err}
		}

		for j := range journeys {
			jn := &journeys[j]
			if !jn.Alive {
				continue
			}
			where, ok := current[j]()
			moved := ok && where != jn.Where
			jn.Visits = append(jn.Visits, Visit{Index: i, Op: op, Where: where, Alive: ok, Moved: moved})
			if moved {
				jn.Moves++
			}
			jn.Alive = ok
			jn.Where = where
			if !ok {
				jn.KilledBy = i
			}
		}
	}

	res.Final = doc.Root()
	res.Revision = doc.Revision()
	return res, nil
}

// trackRef registers t with the document and returns a closure that
// renders its current location.
func trackRef(doc *engine.Document, t Track) func() (string, bool) {
	switch t.Kind {
	case TrackPoint:
		ref := doc.TrackPoint(t.Point, t.Affinity)
		return func() (string, bool) {
			pt, ok := ref.Current()
			if !ok {
				return "", false
			}
			return pt.String(), true
		}
	case TrackRange:
		ref := doc.TrackRange(t.Range, t.RangeAffinity)
		return func() (string, bool) {
			r, ok := ref.Current()
			if !ok {
				return "", false
			}
			return r.String(), true
		}
	default:
		ref := doc.TrackPath(t.Path, t.Affinity)
		return func() (string, bool) {
			p, ok := ref.Current()
			if !ok {
				return "", false
			}
			return p.String(), true
		}
	}
}
