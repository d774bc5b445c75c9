// Package editor is the interaction engine of the drawing surface. An Editor
// owns the single selection, its handles, the active pointer session and the
// undo history, and exposes the toolbar and pointer entry points.
//
// An Editor is not safe for concurrent use; events must be applied one at a
// time in delivery order.
package editor

import (
	"log/slog"

	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
)

// Surface is the drawing surface the editor manipulates.
type Surface interface {
	// Insert places s at index in painter's order; -1 appends.
	Insert(s *shape.Shape, index int)
	// Remove takes s off the surface and returns its former index, or -1.
	Remove(s *shape.Shape) int
	// ShapeList returns the shapes back to front.
	ShapeList() []*shape.Shape
	// ToLocal converts screen coordinates to surface-local coordinates.
	ToLocal(screen geom.Point) geom.Point
}

// Toolbar holds the current values of the style inputs.
type Toolbar struct {
	Stroke      string  `json:"stroke" toml:"stroke"`
	StrokeWidth float64 `json:"strokeWidth" toml:"stroke_width"`
	Fill        string  `json:"fill" toml:"fill"`
}

// DefaultToolbar matches the initial values of the style inputs.
func DefaultToolbar() Toolbar {
	return Toolbar{Stroke: "#000000", StrokeWidth: 1, Fill: "#ffffff"}
}

// Editor is the editing context for one drawing surface.
type Editor struct {
	surface Surface
	toolbar Toolbar
	log     *slog.Logger

	// Selection state. handles and rotation always describe selected.
	selected *shape.Shape
	handles  []Handle
	rotation *Handle

	// The single pointer session slot.
	active Session

	history *History
}

type Option func(*Editor)

// WithLogger sets the logger used for debug traces of sessions and no-ops.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithToolbar sets the initial toolbar values.
func WithToolbar(tb Toolbar) Option {
	return func(e *Editor) {
		e.toolbar = tb
	}
}

// New creates an editor over surface with nothing selected.
func New(surface Surface, opts ...Option) *Editor {
	e := &Editor{
		surface: surface,
		toolbar: DefaultToolbar(),
		log:     slog.Default(),
		history: NewHistory(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Surface returns the surface the editor works on.
func (e *Editor) Surface() Surface {
	return e.surface
}

// --- Toolbar commands ---

// AddShape adds a shape of kind at its default geometry, styled from the
// toolbar. Unknown kinds are ignored.
func (e *Editor) AddShape(kind string) {
	k, err := shape.ParseKind(kind)
	if err != nil {
		e.log.Debug("add shape ignored", "kind", kind, "error", err)
		return
	}
	s, err := shape.New(k, shape.Style{
		Stroke:      e.toolbar.Stroke,
		StrokeWidth: e.toolbar.StrokeWidth,
		Fill:        shape.FillNone,
	})
	if err != nil {
		e.log.Debug("add shape ignored", "kind", kind, "error", err)
		return
	}
	e.surface.Insert(s, -1)
	e.history.RecordCreate(s)
}

// DeleteSelected removes the selected shape from the surface and records
// it for undo. Without a selection it does nothing.
func (e *Editor) DeleteSelected() {
	s := e.selected
	if s == nil {
		return
	}
	e.Deselect()
	index := e.surface.Remove(s)
	e.history.RecordDelete(s, index)
}

// UpdateSelectedStyle applies toolbar values to the selected shape. Lines
// ignore fill; an empty fill means "none".
func (e *Editor) UpdateSelectedStyle(stroke string, width float64, fill string) {
	e.toolbar = Toolbar{Stroke: stroke, StrokeWidth: width, Fill: fill}

	s := e.selected
	if s == nil {
		return
	}
	s.Style.Stroke = stroke
	s.Style.StrokeWidth = width
	if s.Kind() != shape.KindLine {
		if fill == "" {
			fill = shape.FillNone
		}
		s.Style.Fill = fill
	}
}

// SetSelectedAttr edits one numeric attribute of the selected shape and
// reports whether anything changed.
func (e *Editor) SetSelectedAttr(name string, v float64) bool {
	s := e.selected
	if s == nil {
		return false
	}
	if err := s.SetAttr(name, v); err != nil {
		e.log.Debug("attribute edit ignored", "shape", s.ID, "error", err)
		return false
	}
	e.RefreshHandles()
	return true
}

// Undo reverts the most recent create or delete. With an empty history it
// does nothing.
func (e *Editor) Undo() {
	entry, ok := e.history.Peek()
	if !ok {
		return
	}
	if entry.Op == OpCreate && entry.Shape == e.selected {
		e.Deselect()
	}
	e.history.Undo(e.surface)
	e.log.Debug("undo", "op", entry.Op.String(), "shape", entry.Shape.ID)
}

// --- Queries ---

// Toolbar returns the current toolbar values.
func (e *Editor) Toolbar() Toolbar {
	return e.toolbar
}

// SetToolbar replaces the toolbar values without touching the selection.
func (e *Editor) SetToolbar(tb Toolbar) {
	e.toolbar = tb
}

// History returns the undo history.
func (e *Editor) History() *History {
	return e.history
}

// State is a serializable snapshot of the editor for front ends.
type State struct {
	SelectedID     string   `json:"selectedId,omitempty"`
	Handles        []Handle `json:"handles,omitempty"`
	RotationHandle *Handle  `json:"rotationHandle,omitempty"`
	Session        string   `json:"session,omitempty"`
	Toolbar        Toolbar  `json:"toolbar"`
	UndoDepth      int      `json:"undoDepth"`
}

// State returns the current selection, session and toolbar state.
func (e *Editor) State() State {
	st := State{
		Handles:   e.Handles(),
		Toolbar:   e.toolbar,
		UndoDepth: e.history.Len(),
	}
	if e.selected != nil {
		st.SelectedID = e.selected.ID
	}
	if e.rotation != nil {
		h := *e.rotation
		st.RotationHandle = &h
	}
	if e.active != nil {
		st.Session = e.active.Name()
	}
	return st
}
