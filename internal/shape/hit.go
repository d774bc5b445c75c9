package shape

import (
	"math"

	"github.com/inamate/sketchpad/internal/geom"
)

// Hit reports whether p, in surface-local coordinates, lands on a painted
// part of s. Unfilled rects and ellipses are only hit along their outline,
// lines along the segment. tolerance is the minimum half-width of an outline.
func Hit(s *Shape, p geom.Point, tolerance float64) bool {
	t := CurrentTransform(s)
	q := geom.RotatePoint(p, t.Center, -t.Angle)
	half := math.Max(s.Style.StrokeWidth/2, tolerance)

	switch g := s.Geometry.(type) {
	case *Rect:
		box := BoundingBox(s)
		if s.Style.Filled() {
			return box.Inset(-half).Contains(q)
		}
		return box.Inset(-half).Contains(q) && !box.Inset(half).Contains(q)

	case *Ellipse:
		if g.RX <= 0 || g.RY <= 0 {
			return false
		}
		dx := (q.X - g.CX) / g.RX
		dy := (q.Y - g.CY) / g.RY
		r := math.Hypot(dx, dy)
		if s.Style.Filled() && r <= 1 {
			return true
		}
		// Radial distance to the outline, scaled back to surface units.
		return math.Abs(r-1)*math.Min(g.RX, g.RY) <= half

	case *Line:
		return segmentDistance(q, geom.Pt(g.X1, g.Y1), geom.Pt(g.X2, g.Y2)) <= half
	}
	return false
}

func segmentDistance(p, a, b geom.Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(geom.Pt(a.X+t*ab.X, a.Y+t*ab.Y))
}
