package editor

import (
	"encoding/json"

	"github.com/inamate/sketchpad/internal/shape"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these in painter's order and draws them on
// its surface, shapes first and the selection overlay last.
type DrawCommand struct {
	Op            string             `json:"op"`                      // "line", "ellipse", "rect", "handle"
	ObjectID      string             `json:"objectId,omitempty"`      // For hit correlation
	Role          Role               `json:"role,omitempty"`          // Handle role for "handle" ops
	Transform     []float64          `json:"transform,omitempty"`     // [a, b, c, d, e, f] affine matrix
	Attrs         map[string]float64 `json:"attrs"`                   // Kind-specific geometry
	Fill          string             `json:"fill,omitempty"`          // Fill color
	Stroke        string             `json:"stroke,omitempty"`        // Stroke color
	StrokeWidth   float64            `json:"strokeWidth,omitempty"`   // Stroke width
	StrokeOpacity float64            `json:"strokeOpacity,omitempty"` // Highlight opacity
	Dash          []float64          `json:"dash,omitempty"`          // Highlight dash pattern
}

// CompileDrawCommands generates a draw command buffer for shapes followed by
// the given handles.
func CompileDrawCommands(shapes []*shape.Shape, handles []Handle) []DrawCommand {
	commands := make([]DrawCommand, 0, len(shapes)+len(handles))
	for _, s := range shapes {
		commands = append(commands, compileShape(s))
	}
	for _, h := range handles {
		commands = append(commands, compileHandle(h))
	}
	return commands
}

func compileShape(s *shape.Shape) DrawCommand {
	attrs := make(map[string]float64, 4)
	for _, name := range shape.AttrNames(s.Kind()) {
		attrs[name], _ = s.Attr(name)
	}

	cmd := DrawCommand{
		Op:          string(s.Kind()),
		ObjectID:    s.ID,
		Attrs:       attrs,
		Stroke:      s.Style.Stroke,
		StrokeWidth: s.Style.StrokeWidth,
	}
	if s.Kind() != shape.KindLine {
		cmd.Fill = s.Style.Fill
	}
	if t := shape.CurrentTransform(s); t.Angle != 0 {
		cmd.Transform = t.Matrix().ToSlice()
	}
	if s.Highlighted {
		cmd.Dash = []float64{4}
		cmd.StrokeOpacity = 0.7
	}
	return cmd
}

func compileHandle(h Handle) DrawCommand {
	cmd := DrawCommand{
		Op:   "handle",
		Role: h.Role,
		Attrs: map[string]float64{
			"cx": h.Position.X,
			"cy": h.Position.Y,
			"r":  HandleRadius,
		},
		Fill: "blue",
	}
	if h.Target != nil {
		cmd.ObjectID = h.Target.ID
	}
	if h.Role == RoleRotation {
		cmd.Fill = "green"
		cmd.Stroke = "black"
		cmd.StrokeWidth = 1
	}
	return cmd
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// Render returns the draw commands for the whole surface including the
// selection overlay.
func (e *Editor) Render() []DrawCommand {
	overlay := e.Handles()
	if e.rotation != nil {
		overlay = append(overlay, *e.rotation)
	}
	return CompileDrawCommands(e.surface.ShapeList(), overlay)
}

// HitTest returns the id of the topmost shape at the screen position, or "".
func (e *Editor) HitTest(x, y float64) string {
	s := e.ShapeAt(e.surface.ToLocal(PointerEvent{X: x, Y: y}.point()))
	if s == nil {
		return ""
	}
	return s.ID
}
