// Package history tracks applied change sets so they can be undone and
// redone. Correctness rides on the change algebra: an entry stores the
// change together with its inverse, and undo/redo just apply one or the
// other. Documents themselves are immutable, so the stacks hold only
// changes, never document copies.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/textloom/textloom/change"
	"github.com/textloom/textloom/rope"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const (
	defaultMaxEntries  = 1000
	defaultGroupWithin = 500 * time.Millisecond
)

// entry pairs a change with its inverse.
type entry struct {
	changes   change.Set // before -> after
	inverted  change.Set // after -> before
	timestamp time.Time
}

// History manages undo/redo state for one document.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	maxEntries  int
	groupWithin time.Duration
}

// New creates a history manager. maxEntries bounds the undo stack;
// records arriving within groupWithin of the previous one merge into a
// single undo step. Non-positive values select defaults.
func New(maxEntries int, groupWithin time.Duration) *History {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if groupWithin <= 0 {
		groupWithin = defaultGroupWithin
	}
	return &History{
		maxEntries:  maxEntries,
		groupWithin: groupWithin,
	}
}

// Record notes that set was applied to docBefore. The inverse is
// computed here, while the deleted content is still readable. Clears
// the redo stack.
func (h *History) Record(docBefore rope.Rope, set change.Set) error {
	if set.Empty() {
		return nil
	}
	inverted, err := set.Invert(docBefore)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.redoStack = nil

	if n := len(h.undoStack); n > 0 && now.Sub(h.undoStack[n-1].timestamp) < h.groupWithin {
		last := h.undoStack[n-1]
		merged, err := last.changes.Compose(set)
		if err != nil {
			return err
		}
		// Inverses compose in reverse order.
		mergedInv, err := inverted.Compose(last.inverted)
		if err != nil {
			return err
		}
		h.undoStack[n-1] = &entry{changes: merged, inverted: mergedInv, timestamp: now}
		return nil
	}

	h.undoStack = append(h.undoStack, &entry{changes: set, inverted: inverted, timestamp: now})
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
	return nil
}

// Undo reverts the most recent recorded change. doc must be the
// document that change produced; Undo returns the restored document
// and the change set it applied.
func (h *History) Undo(doc rope.Rope) (rope.Rope, change.Set, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return rope.Rope{}, change.Set{}, ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	// Apply without holding the lock.
	restored, err := e.inverted.Apply(doc)
	if err != nil {
		h.mu.Lock()
		h.undoStack = append(h.undoStack, e)
		h.mu.Unlock()
		return rope.Rope{}, change.Set{}, err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, e)
	h.mu.Unlock()
	return restored, e.inverted, nil
}

// Redo reapplies the most recently undone change. doc must be the
// document Undo restored; Redo returns the re-edited document and the
// change set it applied.
func (h *History) Redo(doc rope.Rope) (rope.Rope, change.Set, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return rope.Rope{}, change.Set{}, ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	redone, err := e.changes.Apply(doc)
	if err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, e)
		h.mu.Unlock()
		return rope.Rope{}, change.Set{}, err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, e)
	h.mu.Unlock()
	return redone, e.changes, nil
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
}

// MaxEntries returns the undo stack bound.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
