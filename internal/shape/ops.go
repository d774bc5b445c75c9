package shape

import (
	"math"

	"github.com/inamate/sketchpad/internal/geom"
)

// Corner names one of the four resize handles of a bounding box.
type Corner string

const (
	TopLeft     Corner = "top-left"
	TopRight    Corner = "top-right"
	BottomLeft  Corner = "bottom-left"
	BottomRight Corner = "bottom-right"
)

// Corners lists the corners in handle order.
var Corners = []Corner{TopLeft, TopRight, BottomLeft, BottomRight}

// Point returns the corner of r named by c.
func (c Corner) Point(r geom.Rect) geom.Point {
	switch c {
	case TopLeft:
		return r.TopLeft()
	case TopRight:
		return r.TopRight()
	case BottomLeft:
		return r.BottomLeft()
	default:
		return r.BottomRight()
	}
}

// signs returns +1 for the edges that grow with a positive delta and -1 for
// the edges that shrink.
func (c Corner) signs() (sx, sy float64) {
	sx, sy = 1, 1
	if c == TopLeft || c == BottomLeft {
		sx = -1
	}
	if c == TopLeft || c == TopRight {
		sy = -1
	}
	return sx, sy
}

// BoundingBox returns the unrotated axis-aligned box of s.
func BoundingBox(s *Shape) geom.Rect {
	switch g := s.Geometry.(type) {
	case *Rect:
		return geom.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
	case *Ellipse:
		return geom.Rect{X: g.CX - g.RX, Y: g.CY - g.RY, Width: 2 * g.RX, Height: 2 * g.RY}
	case *Line:
		return geom.RectFromPoints(geom.Pt(g.X1, g.Y1), geom.Pt(g.X2, g.Y2))
	}
	return geom.Rect{}
}

// Translate moves s by (dx, dy) in its own unrotated frame.
func Translate(s *Shape, dx, dy float64) {
	switch g := s.Geometry.(type) {
	case *Rect:
		g.X += dx
		g.Y += dy
	case *Ellipse:
		g.CX += dx
		g.CY += dy
	case *Line:
		g.X1 += dx
		g.Y1 += dy
		g.X2 += dx
		g.Y2 += dy
	}
}

// ResizeFromCorner recomputes s from orig, its geometry when the drag began,
// as if corner had been dragged by (dx, dy).
//
// Rect keeps the opposite corner fixed. Ellipse re-centers by half the delta
// and grows or shrinks its radii by the full delta. Line only reacts to the
// top-left (endpoint 1) and bottom-right (endpoint 2) corners.
// A geometry of another kind than orig is left untouched.
func ResizeFromCorner(s *Shape, orig Geometry, corner Corner, dx, dy float64) {
	sx, sy := corner.signs()

	switch g := s.Geometry.(type) {
	case *Rect:
		o, ok := orig.(*Rect)
		if !ok {
			return
		}
		w := math.Max(o.Width+sx*dx, MinSize)
		h := math.Max(o.Height+sy*dy, MinSize)
		g.X, g.Width = o.X, w
		if sx < 0 {
			g.X = o.X + o.Width - w
		}
		g.Y, g.Height = o.Y, h
		if sy < 0 {
			g.Y = o.Y + o.Height - h
		}

	case *Ellipse:
		o, ok := orig.(*Ellipse)
		if !ok {
			return
		}
		g.RX = math.Max(o.RX+sx*dx, MinSize)
		g.RY = math.Max(o.RY+sy*dy, MinSize)
		g.CX = o.CX + dx/2
		g.CY = o.CY + dy/2

	case *Line:
		o, ok := orig.(*Line)
		if !ok {
			return
		}
		switch corner {
		case TopLeft:
			g.X1, g.Y1 = o.X1+dx, o.Y1+dy
		case BottomRight:
			g.X2, g.Y2 = o.X2+dx, o.Y2+dy
		}
	}
}

// SetRotation replaces the shape's rotation. It does not compose with the
// previous value.
func SetRotation(s *Shape, angle float64) {
	s.Rotation = angle
}
