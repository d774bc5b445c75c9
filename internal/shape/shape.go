// Package shape defines the three editable primitives and the kind-specific
// meaning of position, size and bounding box for each of them.
package shape

import (
	"errors"
	"fmt"

	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/typeid"
)

// MinSize is the smallest radius (Ellipse) or side (Rect) a resize or a
// property edit may produce.
const MinSize = 5.0

var (
	ErrUnknownKind = errors.New("unknown shape kind")
	ErrUnknownAttr = errors.New("unknown shape attribute")
)

type Kind string

const (
	KindLine    Kind = "line"
	KindEllipse Kind = "ellipse"
	KindRect    Kind = "rect"
)

// ParseKind validates a kind name coming from a toolbar or a file.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLine, KindEllipse, KindRect:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Geometry is the kind-specific attribute set of a shape. It is implemented
// only by *Line, *Ellipse and *Rect.
type Geometry interface {
	Kind() Kind
	clone() Geometry
}

// Line is a segment between two endpoints.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Ellipse is an axis-aligned ellipse around (CX, CY).
type Ellipse struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (*Line) Kind() Kind    { return KindLine }
func (*Ellipse) Kind() Kind { return KindEllipse }
func (*Rect) Kind() Kind    { return KindRect }

func (g *Line) clone() Geometry    { c := *g; return &c }
func (g *Ellipse) clone() Geometry { c := *g; return &c }
func (g *Rect) clone() Geometry    { c := *g; return &c }

// Style is the decoration shared by every kind. Fill is ignored for lines.
type Style struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill"`
}

// FillNone is the fill value of an unfilled shape.
const FillNone = "none"

// Filled reports whether the fill paints anything.
func (s Style) Filled() bool {
	return s.Fill != "" && s.Fill != FillNone
}

// Shape is one primitive on the drawing surface.
//
// Rotation is in degrees and is always applied about the center of the
// current bounding box; the center is never stored.
type Shape struct {
	ID       string
	Geometry Geometry
	Style    Style
	Rotation float64

	// Highlighted marks the selected shape. It is editor state and is not
	// serialized.
	Highlighted bool
}

// DefaultGeometry returns the geometry a freshly added shape of kind gets.
func DefaultGeometry(kind Kind) (Geometry, error) {
	switch kind {
	case KindLine:
		return &Line{X1: 50, Y1: 50, X2: 200, Y2: 200}, nil
	case KindEllipse:
		return &Ellipse{CX: 150, CY: 150, RX: 50, RY: 30}, nil
	case KindRect:
		return &Rect{X: 100, Y: 100, Width: 100, Height: 50}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// New creates a shape of kind at its default geometry with a fresh id.
func New(kind Kind, style Style) (*Shape, error) {
	g, err := DefaultGeometry(kind)
	if err != nil {
		return nil, err
	}
	return &Shape{
		ID:       typeid.NewShapeID(),
		Geometry: g,
		Style:    style,
	}, nil
}

// Kind returns the kind of the shape's geometry.
func (s *Shape) Kind() Kind {
	return s.Geometry.Kind()
}

// Clone returns a deep copy of s, sharing nothing with it.
func (s *Shape) Clone() *Shape {
	c := *s
	c.Geometry = s.Geometry.clone()
	return &c
}

// CloneGeometry returns a copy of g, used to cache pre-drag attributes.
func CloneGeometry(g Geometry) Geometry {
	return g.clone()
}

// Transform is the rotation currently applied to a shape.
type Transform struct {
	Center geom.Point
	Angle  float64
}

// CurrentTransform derives the rotation center from the shape's bounding box
// and pairs it with the stored angle.
func CurrentTransform(s *Shape) Transform {
	return Transform{
		Center: BoundingBox(s).Center(),
		Angle:  s.Rotation,
	}
}

// Matrix returns the affine form of t.
func (t Transform) Matrix() geom.Matrix2D {
	if t.Angle == 0 {
		return geom.Identity()
	}
	return geom.RotateAbout(t.Angle, t.Center)
}

// TransformAttr renders the shape's rotation as an SVG transform value.
func (s *Shape) TransformAttr() string {
	t := CurrentTransform(s)
	return geom.FormatRotation(t.Angle, t.Center)
}
