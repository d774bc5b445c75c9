package geom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rotateArgs matches the angle of the first rotate(...) in an SVG transform
// list; the optional center arguments are ignored because the editor always
// derives the center from the shape's bounding box.
var rotateArgs = regexp.MustCompile(`rotate\(\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)`)

// ParseRotation extracts the rotation angle in degrees from an SVG transform
// attribute. A missing or malformed rotate() yields 0.
func ParseRotation(transform string) float64 {
	if !strings.Contains(transform, "rotate") {
		return 0
	}
	m := rotateArgs.FindStringSubmatch(transform)
	if m == nil {
		return 0
	}
	angle, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return angle
}

// FormatRotation renders a rotation about center as an SVG transform value.
// Zero rotation renders as the empty string.
func FormatRotation(angle float64, center Point) string {
	if angle == 0 {
		return ""
	}
	return fmt.Sprintf("rotate(%s %s %s)", FormatFloat(angle), FormatFloat(center.X), FormatFloat(center.Y))
}

// FormatFloat prints v without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
