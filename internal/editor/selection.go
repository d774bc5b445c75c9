package editor

import (
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
)

const (
	// HandleRadius is the drawn radius of every handle.
	HandleRadius = 5.0
	// RotationHandleOffset is how far above the top edge the rotation
	// handle sits before rotation is applied.
	RotationHandleOffset = 20.0

	handleSlop   = 2.0
	hitTolerance = 4.0
)

// Role tags what dragging a handle does.
type Role string

const (
	RoleTopLeft     = Role(shape.TopLeft)
	RoleTopRight    = Role(shape.TopRight)
	RoleBottomLeft  = Role(shape.BottomLeft)
	RoleBottomRight = Role(shape.BottomRight)
	RoleRotation    Role = "rotation"
)

// Corner returns the resize corner of a corner role.
func (r Role) Corner() (shape.Corner, bool) {
	if r == RoleRotation || r == "" {
		return "", false
	}
	return shape.Corner(r), true
}

// Handle is a marker that drives a resize or rotate session. Target is only
// used to dispatch the session; the editor owns the handle, not the shape.
type Handle struct {
	Role     Role         `json:"role"`
	Position geom.Point   `json:"position"`
	Target   *shape.Shape `json:"-"`
}

// Contains reports whether p falls on the handle.
func (h Handle) Contains(p geom.Point) bool {
	return h.Position.Dist(p) <= HandleRadius+handleSlop
}

// Select makes s the selection, replacing any previous one, highlights it,
// copies its style into the toolbar and builds its handles.
func (e *Editor) Select(s *shape.Shape) {
	if s == nil {
		e.Deselect()
		return
	}
	e.Deselect()

	e.selected = s
	s.Highlighted = true
	e.syncToolbar(s)
	e.RefreshHandles()
}

// Deselect clears the highlight and the handles. The editor is then idle
// with an empty selection.
func (e *Editor) Deselect() {
	if e.selected != nil {
		e.selected.Highlighted = false
	}
	e.selected = nil
	e.handles = nil
	e.rotation = nil
}

// Selected returns the selected shape, or nil.
func (e *Editor) Selected() *shape.Shape {
	return e.selected
}

// RefreshHandles rebuilds the handles of the selection from its current
// geometry: four corner handles on the unrotated box, and a rotation handle
// RotationHandleOffset above the top edge, turned with the shape.
func (e *Editor) RefreshHandles() {
	s := e.selected
	if s == nil {
		e.handles = nil
		e.rotation = nil
		return
	}

	box := shape.BoundingBox(s)
	handles := make([]Handle, 0, len(shape.Corners))
	for _, c := range shape.Corners {
		handles = append(handles, Handle{
			Role:     Role(c),
			Position: c.Point(box),
			Target:   s,
		})
	}
	e.handles = handles

	t := shape.CurrentTransform(s)
	anchor := geom.Pt(t.Center.X, box.Y-RotationHandleOffset)
	e.rotation = &Handle{
		Role:     RoleRotation,
		Position: geom.RotatePoint(anchor, t.Center, t.Angle),
		Target:   s,
	}
}

// Handles returns a copy of the corner handles of the selection.
func (e *Editor) Handles() []Handle {
	if len(e.handles) == 0 {
		return nil
	}
	out := make([]Handle, len(e.handles))
	copy(out, e.handles)
	return out
}

// RotationHandle returns the rotation handle of the selection.
func (e *Editor) RotationHandle() (Handle, bool) {
	if e.rotation == nil {
		return Handle{}, false
	}
	return *e.rotation, true
}

// HandleAt returns the handle under the local point p. The rotation handle
// wins over corner handles.
func (e *Editor) HandleAt(p geom.Point) (Handle, bool) {
	if e.rotation != nil && e.rotation.Contains(p) {
		return *e.rotation, true
	}
	for _, h := range e.handles {
		if h.Contains(p) {
			return h, true
		}
	}
	return Handle{}, false
}

// ShapeAt returns the topmost shape painted at the local point p.
func (e *Editor) ShapeAt(p geom.Point) *shape.Shape {
	shapes := e.surface.ShapeList()
	for i := len(shapes) - 1; i >= 0; i-- {
		if shape.Hit(shapes[i], p, hitTolerance) {
			return shapes[i]
		}
	}
	return nil
}

func (e *Editor) syncToolbar(s *shape.Shape) {
	e.toolbar.Stroke = s.Style.Stroke
	if e.toolbar.Stroke == "" {
		e.toolbar.Stroke = "#000000"
	}
	e.toolbar.StrokeWidth = s.Style.StrokeWidth
	if e.toolbar.StrokeWidth == 0 {
		e.toolbar.StrokeWidth = 1
	}
	if s.Kind() != shape.KindLine {
		e.toolbar.Fill = s.Style.Fill
		if e.toolbar.Fill == "" {
			e.toolbar.Fill = "#ffffff"
		}
	}
}
