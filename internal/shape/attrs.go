package shape

import (
	"fmt"
	"math"
)

// Attr reads a numeric attribute by its SVG name.
func (s *Shape) Attr(name string) (float64, bool) {
	switch name {
	case "stroke-width":
		return s.Style.StrokeWidth, true
	case "rotation":
		return s.Rotation, true
	}
	p, ok := s.attrPtr(name)
	if !ok {
		return 0, false
	}
	return *p, true
}

// SetAttr writes a numeric attribute by its SVG name. Sizes are clamped to
// MinSize and a negative stroke width to 0.
func (s *Shape) SetAttr(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("attribute %q: value %v is not finite", name, v)
	}
	switch name {
	case "stroke-width":
		s.Style.StrokeWidth = math.Max(v, 0)
		return nil
	case "rotation":
		s.Rotation = v
		return nil
	}
	p, ok := s.attrPtr(name)
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrUnknownAttr, name, s.Kind())
	}
	switch name {
	case "width", "height", "rx", "ry":
		v = math.Max(v, MinSize)
	}
	*p = v
	return nil
}

// AttrNames lists the geometric attributes of kind in document order.
func AttrNames(kind Kind) []string {
	switch kind {
	case KindLine:
		return []string{"x1", "y1", "x2", "y2"}
	case KindEllipse:
		return []string{"cx", "cy", "rx", "ry"}
	case KindRect:
		return []string{"x", "y", "width", "height"}
	}
	return nil
}

func (s *Shape) attrPtr(name string) (*float64, bool) {
	switch g := s.Geometry.(type) {
	case *Line:
		switch name {
		case "x1":
			return &g.X1, true
		case "y1":
			return &g.Y1, true
		case "x2":
			return &g.X2, true
		case "y2":
			return &g.Y2, true
		}
	case *Ellipse:
		switch name {
		case "cx":
			return &g.CX, true
		case "cy":
			return &g.CY, true
		case "rx":
			return &g.RX, true
		case "ry":
			return &g.RY, true
		}
	case *Rect:
		switch name {
		case "x":
			return &g.X, true
		case "y":
			return &g.Y, true
		case "width":
			return &g.Width, true
		case "height":
			return &g.Height, true
		}
	}
	return nil, false
}
