package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
)

// MaxCanvasSize bounds each side of a drawing surface in pixels.
const MaxCanvasSize = 8192

var (
	ErrShapeNotFound   = errors.New("shape not found")
	ErrDrawingNotFound = errors.New("drawing not found")
	ErrCanvasSize      = errors.New("canvas size out of range")
)

// CheckSize reports whether width x height fits within MaxCanvasSize.
// Zero is allowed and means no surface.
func CheckSize(width, height int) error {
	if width < 0 || height < 0 || width > MaxCanvasSize || height > MaxCanvasSize {
		return fmt.Errorf("%w: %dx%d, limit %d", ErrCanvasSize, width, height, MaxCanvasSize)
	}
	return nil
}

// Drawing is the drawing surface: an ordered shape set (painter's order,
// back to front) plus the view transform that maps surface-local
// coordinates to screen coordinates.
type Drawing struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background string         `json:"background"`
	CreatedAt  string         `json:"createdAt"`
	Shapes     []*shape.Shape `json:"shapes"`

	// screen = view * local. The zero value means identity.
	view geom.Matrix2D
}

// NewEmptyDrawing creates a drawing with no shapes.
func NewEmptyDrawing(id, name string, width, height int, background string) *Drawing {
	return &Drawing{
		ID:         id,
		Name:       name,
		Width:      width,
		Height:     height,
		Background: background,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Shapes:     []*shape.Shape{},
	}
}

// Parse decodes a drawing from its JSON form.
func Parse(data []byte) (*Drawing, error) {
	var d Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	if err := CheckSize(d.Width, d.Height); err != nil {
		return nil, fmt.Errorf("decode drawing: %w", err)
	}
	if d.Shapes == nil {
		d.Shapes = []*shape.Shape{}
	}
	for i, s := range d.Shapes {
		if s == nil {
			return nil, fmt.Errorf("decode drawing: shape %d is null", i)
		}
	}
	return &d, nil
}

// Insert places s at index in painter's order. An out-of-range index
// (including -1) appends.
func (d *Drawing) Insert(s *shape.Shape, index int) {
	if index < 0 || index >= len(d.Shapes) {
		d.Shapes = append(d.Shapes, s)
		return
	}
	d.Shapes = append(d.Shapes, nil)
	copy(d.Shapes[index+1:], d.Shapes[index:])
	d.Shapes[index] = s
}

// Remove takes s off the surface and returns the index it had, or -1 when
// it was not on the surface.
func (d *Drawing) Remove(s *shape.Shape) int {
	i := d.IndexOf(s)
	if i < 0 {
		return -1
	}
	d.Shapes = append(d.Shapes[:i], d.Shapes[i+1:]...)
	return i
}

// IndexOf returns the painter's-order index of s, or -1.
func (d *Drawing) IndexOf(s *shape.Shape) int {
	for i, c := range d.Shapes {
		if c == s {
			return i
		}
	}
	return -1
}

// ShapeList returns the shapes back to front. The slice is owned by the drawing.
func (d *Drawing) ShapeList() []*shape.Shape {
	return d.Shapes
}

// Find looks a shape up by id.
func (d *Drawing) Find(id string) (*shape.Shape, error) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
}

// SetView sets the local-to-screen transform (zoom and pan).
func (d *Drawing) SetView(m geom.Matrix2D) {
	d.view = m
}

// View returns the local-to-screen transform.
func (d *Drawing) View() geom.Matrix2D {
	if d.view == (geom.Matrix2D{}) {
		return geom.Identity()
	}
	return d.view
}

// ToLocal converts a screen position to surface-local coordinates,
// accounting for the current view transform.
func (d *Drawing) ToLocal(screen geom.Point) geom.Point {
	return d.View().Invert().Apply(screen)
}

// Bounds returns the surface rectangle in local coordinates.
func (d *Drawing) Bounds() geom.Rect {
	return geom.Rect{Width: float64(d.Width), Height: float64(d.Height)}
}

// Snapshot returns a deep copy that shares no shapes with d.
func (d *Drawing) Snapshot() *Drawing {
	c := *d
	c.Shapes = make([]*shape.Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		c.Shapes[i] = s.Clone()
	}
	return &c
}
