package editor

import "github.com/inamate/sketchpad/internal/shape"

// Op is the action an Entry reverts.
type Op int

const (
	// OpCreate reverts by removing the created shape.
	OpCreate Op = iota
	// OpDelete reverts by re-inserting the deleted shape.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Entry is one reversible action. Shape is the very object that was created
// or deleted, so re-inserting it restores every attribute.
type Entry struct {
	Op    Op
	Shape *shape.Shape
	Index int // painter's-order index the deleted shape had
}

// History is a single-step undo stack. There is no redo.
type History struct {
	entries []Entry
}

func NewHistory() *History {
	return &History{}
}

// RecordCreate pushes the inverse of adding s.
func (h *History) RecordCreate(s *shape.Shape) {
	h.entries = append(h.entries, Entry{Op: OpCreate, Shape: s, Index: -1})
}

// RecordDelete pushes the inverse of removing s from index.
func (h *History) RecordDelete(s *shape.Shape, index int) {
	h.entries = append(h.entries, Entry{Op: OpDelete, Shape: s, Index: index})
}

// Peek returns the entry Undo would revert.
func (h *History) Peek() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Undo pops the most recent entry and reverts it on surface. It reports
// false, doing nothing, when the history is empty.
func (h *History) Undo(surface Surface) bool {
	entry, ok := h.Peek()
	if !ok {
		return false
	}
	h.entries[len(h.entries)-1] = Entry{}
	h.entries = h.entries[:len(h.entries)-1]

	switch entry.Op {
	case OpCreate:
		surface.Remove(entry.Shape)
	case OpDelete:
		surface.Insert(entry.Shape, entry.Index)
	}
	return true
}

// Len returns the number of entries that can be undone.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear drops every entry, releasing the shapes they hold.
func (h *History) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
}
