package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/gg"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
)

// namedColors covers the keywords the editor itself emits plus the common
// CSS basics. Anything else must be hex.
var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"yellow": "#ffff00",
	"orange": "#ffa500",
	"purple": "#800080",
	"gray":   "#808080",
	"grey":   "#808080",
}

// PNG rasterizes d at its surface size and writes it as PNG.
func PNG(w io.Writer, d *document.Drawing) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("rasterize %dx%d drawing: empty surface", d.Width, d.Height)
	}
	if err := document.CheckSize(d.Width, d.Height); err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}

	dc := gg.NewContext(d.Width, d.Height)
	defer dc.Close()

	if hex, ok := resolveColor(d.Background); ok {
		dc.SetHexColor(hex)
		dc.DrawRectangle(0, 0, float64(d.Width), float64(d.Height))
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("rasterize background: %w", err)
		}
	}

	for _, s := range d.ShapeList() {
		if err := drawShape(dc, s); err != nil {
			return fmt.Errorf("rasterize %s %s: %w", s.Kind(), s.ID, err)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawShape(dc *gg.Context, s *shape.Shape) error {
	fill, filled := resolveColor(s.Style.Fill)
	if s.Kind() == shape.KindLine {
		filled = false
	}
	stroke, stroked := resolveColor(s.Style.Stroke)
	stroked = stroked && s.Style.StrokeWidth > 0
	if !filled && !stroked {
		return nil
	}

	dc.Push()
	defer dc.Pop()

	if t := shape.CurrentTransform(s); t.Angle != 0 {
		dc.RotateAbout(geom.DegToRad(t.Angle), t.Center.X, t.Center.Y)
	}

	switch g := s.Geometry.(type) {
	case *shape.Line:
		dc.DrawLine(g.X1, g.Y1, g.X2, g.Y2)
	case *shape.Ellipse:
		dc.DrawEllipse(g.CX, g.CY, g.RX, g.RY)
	case *shape.Rect:
		dc.DrawRectangle(g.X, g.Y, g.Width, g.Height)
	}

	if filled {
		dc.SetHexColor(fill)
		var err error
		if stroked {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return err
		}
	}
	if stroked {
		dc.SetHexColor(stroke)
		dc.SetLineWidth(s.Style.StrokeWidth)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

func resolveColor(c string) (string, bool) {
	c = strings.TrimSpace(strings.ToLower(c))
	switch c {
	case "", shape.FillNone, "transparent":
		return "", false
	}
	if strings.HasPrefix(c, "#") {
		return c, true
	}
	if hex, ok := namedColors[c]; ok {
		return hex, true
	}
	slog.Debug("unsupported color in export", "color", c)
	return "", false
}
