package editor

import (
	"math"

	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
)

// PointerEvent is a pointer position in screen coordinates.
type PointerEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (ev PointerEvent) point() geom.Point {
	return geom.Pt(ev.X, ev.Y)
}

// Session is one Move, Resize or Rotate interaction, from pointer-down to
// pointer-up. The editor holds at most one.
type Session interface {
	Name() string
	Begin(ev PointerEvent)
	OnMove(ev PointerEvent)
	End(ev PointerEvent)
}

// PointerDown dispatches a press: on the rotation handle it starts Rotate,
// on a corner handle Resize, on a shape it selects the shape and starts Move,
// and on empty surface it clears the selection.
func (e *Editor) PointerDown(ev PointerEvent) {
	if e.active != nil {
		// A release was lost; close the stale session first.
		e.endSession(ev)
	}

	local := e.surface.ToLocal(ev.point())

	if h, ok := e.HandleAt(local); ok {
		if corner, isCorner := h.Role.Corner(); isCorner {
			e.beginSession(&resizeSession{ed: e, target: h.Target, corner: corner}, ev)
		} else {
			e.beginSession(&rotateSession{ed: e, target: h.Target}, ev)
		}
		return
	}

	if s := e.ShapeAt(local); s != nil {
		e.Select(s)
		e.beginSession(&moveSession{ed: e, target: s}, ev)
		return
	}

	e.Deselect()
}

// PointerMove feeds the active session. Without one it does nothing.
func (e *Editor) PointerMove(ev PointerEvent) {
	if e.active == nil {
		return
	}
	e.active.OnMove(ev)
}

// PointerUp ends the active session, whatever happened to the selection in
// the meantime.
func (e *Editor) PointerUp(ev PointerEvent) {
	e.endSession(ev)
}

// Cancel ends the active session exactly as a release would, keeping the
// geometry reached so far.
func (e *Editor) Cancel() {
	e.endSession(PointerEvent{})
}

// Busy reports whether a pointer session is active.
func (e *Editor) Busy() bool {
	return e.active != nil
}

func (e *Editor) beginSession(s Session, ev PointerEvent) {
	e.active = s
	s.Begin(ev)
	e.log.Debug("session begin", "session", s.Name(), "x", ev.X, "y", ev.Y)
}

func (e *Editor) endSession(ev PointerEvent) {
	if e.active == nil {
		return
	}
	s := e.active
	e.active = nil
	s.End(ev)
	e.log.Debug("session end", "session", s.Name())
}

// tracking reports whether the session target is still the live selection;
// a session whose shape was deselected stops editing it.
func (e *Editor) tracking(target *shape.Shape) bool {
	return target != nil && target == e.selected
}

// moveSession drags a shape body. Deltas are incremental and measured in
// surface-local space, then turned into the shape's unrotated frame.
type moveSession struct {
	ed     *Editor
	target *shape.Shape
	last   geom.Point
}

func (m *moveSession) Name() string { return "move" }

func (m *moveSession) Begin(ev PointerEvent) {
	m.last = m.ed.surface.ToLocal(ev.point())
}

func (m *moveSession) OnMove(ev PointerEvent) {
	if !m.ed.tracking(m.target) {
		return
	}
	p := m.ed.surface.ToLocal(ev.point())
	t := shape.CurrentTransform(m.target)
	d := geom.RotateVector(p.Sub(m.last), -t.Angle)
	shape.Translate(m.target, d.X, d.Y)
	m.last = p
	m.ed.RefreshHandles()
}

func (m *moveSession) End(PointerEvent) {}

// resizeSession drags a corner handle. Every step is recomputed from the
// geometry and the screen position captured at pointer-down.
type resizeSession struct {
	ed     *Editor
	target *shape.Shape
	corner shape.Corner
	anchor geom.Point
	orig   shape.Geometry
}

func (r *resizeSession) Name() string { return "resize" }

func (r *resizeSession) Begin(ev PointerEvent) {
	r.anchor = ev.point()
	r.orig = shape.CloneGeometry(r.target.Geometry)
}

func (r *resizeSession) OnMove(ev PointerEvent) {
	if !r.ed.tracking(r.target) {
		return
	}
	d := ev.point().Sub(r.anchor)
	shape.ResizeFromCorner(r.target, r.orig, r.corner, d.X, d.Y)
	r.ed.RefreshHandles()
}

func (r *resizeSession) End(PointerEvent) {}

// rotateSession drags the rotation handle. The rotation written on each step
// is the rotation at pointer-down plus the angle swept since then.
type rotateSession struct {
	ed      *Editor
	target  *shape.Shape
	center  geom.Point
	initial float64
	start   float64
}

func (r *rotateSession) Name() string { return "rotate" }

func (r *rotateSession) Begin(ev PointerEvent) {
	r.center = shape.BoundingBox(r.target).Center()
	r.initial = geom.Angle(r.center, r.ed.surface.ToLocal(ev.point()))
	r.start = r.target.Rotation
}

func (r *rotateSession) OnMove(ev PointerEvent) {
	if !r.ed.tracking(r.target) {
		return
	}
	current := geom.Angle(r.center, r.ed.surface.ToLocal(ev.point()))
	shape.SetRotation(r.target, normalizeDegrees(r.start+geom.RadToDeg(current-r.initial)))
	r.ed.RefreshHandles()
}

func (r *rotateSession) End(PointerEvent) {}

// normalizeDegrees maps an angle into (-180, 180].
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
