package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/loomkit/loom/internal/engine/operation"
)

// Errors returned by history operations.
var (
	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Batch is one undo unit: the operations applied by a single edit, undone
// and redone together.
type Batch struct {
	Name string
	Ops  []operation.Operation
	At   time.Time
}

// History manages the undo/redo stacks for a document. Batches are
// recorded as edits are applied; Undo hands back the inverse operations
// for the caller to re-apply, Redo hands back the originals.
type History struct {
	mu sync.Mutex

	undoStack []*Batch
	redoStack []*Batch

	// Grouping state
	grouping  bool
	groupName string
	groupOps  []operation.Operation

	// Configuration
	maxEntries int
}

// DefaultMaxEntries bounds the undo stack when no limit is configured.
const DefaultMaxEntries = 1000

// New creates a new history manager keeping at most maxEntries batches.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Record adds the operations as one batch on the undo stack and clears
// the redo stack. Inside a group the operations are buffered until
// EndGroup seals them.
func (h *History) Record(ops ...operation.Operation) {
	if len(ops) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupOps = append(h.groupOps, ops...)
		return
	}

	h.pushLocked(&Batch{Ops: ops, At: time.Now()})
}

// pushLocked adds a batch without acquiring the lock.
func (h *History) pushLocked(b *Batch) {
	h.undoStack = append(h.undoStack, b)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the most recent batch and returns the operations that exactly
// reverse it: each operation inverted, in reverse order. The batch moves
// to the redo stack. The stacks are left untouched when a batch cannot be
// inverted.
func (h *History) Undo() ([]operation.Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}
	b := h.undoStack[len(h.undoStack)-1]

	inverses := make([]operation.Operation, 0, len(b.Ops))
	for i := len(b.Ops) - 1; i >= 0; i-- {
		inv, err := operation.Invert(b.Ops[i])
		if err != nil {
			return nil, fmt.Errorf("undo: %w", err)
		}
		inverses = append(inverses, inv)
	}

	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, b)
	return inverses, nil
}

// Redo pops the most recently undone batch and returns its original
// operations in application order. The batch moves back to the undo
// stack.
func (h *History) Redo() ([]operation.Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}
	b := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, b)

	ops := make([]operation.Operation, len(b.Ops))
	copy(ops, b.Ops)
	return ops, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undoable batches.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redoable batches.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a batch group. Operations recorded until EndGroup
// combine into a single undo unit. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupOps = nil
}

// EndGroup seals the open group into one batch. An empty group records
// nothing.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false

	if len(h.groupOps) == 0 {
		h.groupOps = nil
		return
	}
	h.pushLocked(&Batch{Name: h.groupName, Ops: h.groupOps, At: time.Now()})
	h.groupOps = nil
}

// CancelGroup discards the open group without recording it.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupOps = nil
}

// Clear removes all undo/redo state.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupOps = nil
}
