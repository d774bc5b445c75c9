package document

import (
	"github.com/inamate/sketchpad/internal/shape"
	"github.com/inamate/sketchpad/internal/typeid"
)

// NewSampleDrawing returns a drawing with one shape of each kind, used by the
// playground room and the wasm demo.
func NewSampleDrawing(drawingID string) *Drawing {
	d := NewEmptyDrawing(drawingID, "Untitled", 800, 600, "#ffffff")

	d.Insert(&shape.Shape{
		ID:       typeid.NewShapeID(),
		Geometry: &shape.Rect{X: 100, Y: 100, Width: 100, Height: 50},
		Style:    shape.Style{Stroke: "#1e88e5", StrokeWidth: 2, Fill: "#bbdefb"},
	}, -1)

	d.Insert(&shape.Shape{
		ID:       typeid.NewShapeID(),
		Geometry: &shape.Ellipse{CX: 400, CY: 250, RX: 80, RY: 45},
		Style:    shape.Style{Stroke: "#e53935", StrokeWidth: 3, Fill: shape.FillNone},
		Rotation: 30,
	}, -1)

	d.Insert(&shape.Shape{
		ID:       typeid.NewShapeID(),
		Geometry: &shape.Line{X1: 120, Y1: 420, X2: 620, Y2: 380},
		Style:    shape.Style{Stroke: "#43a047", StrokeWidth: 4, Fill: shape.FillNone},
	}, -1)

	return d
}
