package refs

import (
	"sync"

	"github.com/google/uuid"

	"github.com/loomkit/loom/internal/engine/operation"
	"github.com/loomkit/loom/internal/engine/path"
	"github.com/loomkit/loom/internal/engine/selection"
)

// PathRef tracks a single path across operations until unreffed.
type PathRef struct {
	id       uuid.UUID
	affinity path.Affinity
	registry *Registry

	mu      sync.RWMutex
	current path.Path
	dead    bool
}

// ID returns the ref's handle, stable for its whole lifetime. It appears
// in debug output so a ref can be followed through logs.
func (r *PathRef) ID() uuid.UUID {
	return r.id
}

// Current returns the ref's present location. The second result is false
// once an operation has deleted the target; the path is nil in that case.
func (r *PathRef) Current() (path.Path, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dead {
		return nil, false
	}
	return r.current.Clone(), true
}

// Unref releases the ref from its registry and returns its final value.
// Further operations no longer affect it.
func (r *PathRef) Unref() (path.Path, bool) {
	r.registry.releasePath(r)
	return r.Current()
}

// transform rebases the ref across op, marking it dead when the target
// is gone. Dead refs stay dead.
func (r *PathRef) transform(op operation.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return
	}
	next, ok := operation.TransformPathWithAffinity(r.current, op, r.affinity)
	if !ok {
		r.current = nil
		r.dead = true
		return
	}
	r.current = next
}

// PointRef tracks a point (leaf path plus text offset) across operations
// until unreffed.
type PointRef struct {
	id       uuid.UUID
	affinity path.Affinity
	registry *Registry

	mu      sync.RWMutex
	current selection.Point
	dead    bool
}

// ID returns the ref's handle.
func (r *PointRef) ID() uuid.UUID {
	return r.id
}

// Current returns the ref's present location, or false once dead.
func (r *PointRef) Current() (selection.Point, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dead {
		return selection.Point{}, false
	}
	return r.current.Clone(), true
}

// Unref releases the ref from its registry and returns its final value.
func (r *PointRef) Unref() (selection.Point, bool) {
	r.registry.releasePoint(r)
	return r.Current()
}

func (r *PointRef) transform(op operation.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return
	}
	next, ok := operation.TransformPointWithAffinity(r.current, op, r.affinity)
	if !ok {
		r.current = selection.Point{}
		r.dead = true
		return
	}
	r.current = next
}

// RangeRef tracks a range across operations until unreffed.
type RangeRef struct {
	id       uuid.UUID
	affinity operation.RangeAffinity
	registry *Registry

	mu      sync.RWMutex
	current selection.Range
	dead    bool
}

// ID returns the ref's handle.
func (r *RangeRef) ID() uuid.UUID {
	return r.id
}

// Current returns the ref's present span, or false once dead.
func (r *RangeRef) Current() (selection.Range, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.dead {
		return selection.Range{}, false
	}
	return r.current.Clone(), true
}

// Unref releases the ref from its registry and returns its final value.
func (r *RangeRef) Unref() (selection.Range, bool) {
	r.registry.releaseRange(r)
	return r.Current()
}

func (r *RangeRef) transform(op operation.Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return
	}
	next, ok := operation.TransformRangeWithAffinity(r.current, op, r.affinity)
	if !ok {
		r.current = selection.Range{}
		r.dead = true
		return
	}
	r.current = next
}
