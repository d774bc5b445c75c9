// Package geom holds the pure 2D math used by the editor: points, axis-aligned
// boxes, affine matrices and rotation about a center.
package geom

import "math"

// Point is a position or a displacement in surface-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ApproxEqual reports whether p and q differ by at most eps on both axes.
func (p Point) ApproxEqual(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// RotatePoint rotates p about center by angle degrees (clockwise on screen,
// since y grows downward). An angle of 0 returns p unchanged, and
// RotatePoint(RotatePoint(p, c, a), c, -a) is p up to rounding.
func RotatePoint(p, center Point, angle float64) Point {
	if angle == 0 {
		return p
	}
	v := RotateVector(p.Sub(center), angle)
	return center.Add(v)
}

// RotateVector rotates the displacement v about the origin.
func RotateVector(v Point, angle float64) Point {
	if angle == 0 {
		return v
	}
	rad := DegToRad(angle)
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Point{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Angle returns the direction of the vector from center to p, in radians.
func Angle(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}
