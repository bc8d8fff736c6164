package refs

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// Registry holds every live ref for one document and rebases all of them
// across each applied operation. The zero value is not usable; create
// registries with NewRegistry.
//
// The backing sets are concurrency-safe, so refs can be tracked and
// unreffed while an Apply is in flight; each ref serializes its own state
// behind its lock.
type Registry struct {
	paths  mapset.Set[*PathRef]
	points mapset.Set[*PointRef]
	ranges mapset.Set[*RangeRef]
}

// NewRegistry creates an empty ref registry.
func NewRegistry() *Registry {
	return &Registry{
		paths:  mapset.NewSet[*PathRef](),
		points: mapset.NewSet[*PointRef](),
		ranges: mapset.NewSet[*RangeRef](),
	}
}

// TrackPath registers a new ref for p. The affinity picks the side to
// follow when the path lands exactly on a split point.
func (g *Registry) TrackPath(p path.Path, affinity path.Affinity) *PathRef {
	ref := &PathRef{
		id:       uuid.New(),
		affinity: affinity,
		registry: g,
		current:  p.Clone(),
	}
	g.paths.Add(ref)
	return ref
}

// TrackPoint registers a new ref for pt.
func (g *Registry) TrackPoint(pt selection.Point, affinity path.Affinity) *PointRef {
	ref := &PointRef{
		id:       uuid.New(),
		affinity: affinity,
		registry: g,
		current:  pt.Clone(),
	}
	g.points.Add(ref)
	return ref
}

// TrackRange registers a new ref for r.
func (g *Registry) TrackRange(r selection.Range, affinity operation.RangeAffinity) *RangeRef {
	ref := &RangeRef{
		id:       uuid.New(),
		affinity: affinity,
		registry: g,
		current:  r.Clone(),
	}
	g.ranges.Add(ref)
	return ref
}

// Apply rebases every live ref across op. Structural operations are the
// only ones that can move paths, so everything else skips the path refs
// entirely; points and ranges still see text operations, which move their
// offsets.
func (g *Registry) Apply(op operation.Operation) {
	if operation.CanAffectPath(op) {
		for _, ref := range g.paths.ToSlice() {
			ref.transform(op)
		}
	}
	for _, ref := range g.points.ToSlice() {
		ref.transform(op)
	}
	for _, ref := range g.ranges.ToSlice() {
		ref.transform(op)
	}
}

// Len returns the number of live refs of all three kinds.
func (g *Registry) Len() int {
	return g.paths.Cardinality() + g.points.Cardinality() + g.ranges.Cardinality()
}

func (g *Registry) releasePath(r *PathRef)   { g.paths.Remove(r) }
func (g *Registry) releasePoint(r *PointRef) { g.points.Remove(r) }
func (g *Registry) releaseRange(r *RangeRef) { g.ranges.Remove(r) }
