package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/shape"
	"github.com/inamate/sketchpad/internal/typeid"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// backgroundClass marks the canvas background rect, which is not a shape.
const backgroundClass = "background"

// Default canvas size for imported markup without width/height.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

var ErrNotSVG = errors.New("not an svg document")

type svgBackground struct {
	XMLName xml.Name `xml:"rect"`
	Class   string   `xml:"class,attr"`
	Width   int      `xml:"width,attr"`
	Height  int      `xml:"height,attr"`
	Fill    string   `xml:"fill,attr"`
}

type svgLine struct {
	XMLName     xml.Name `xml:"line"`
	ID          string   `xml:"id,attr,omitempty"`
	X1          float64  `xml:"x1,attr"`
	Y1          float64  `xml:"y1,attr"`
	X2          float64  `xml:"x2,attr"`
	Y2          float64  `xml:"y2,attr"`
	Stroke      string   `xml:"stroke,attr,omitempty"`
	StrokeWidth float64  `xml:"stroke-width,attr"`
	Transform   string   `xml:"transform,attr,omitempty"`
}

type svgEllipse struct {
	XMLName     xml.Name `xml:"ellipse"`
	ID          string   `xml:"id,attr,omitempty"`
	CX          float64  `xml:"cx,attr"`
	CY          float64  `xml:"cy,attr"`
	RX          float64  `xml:"rx,attr"`
	RY          float64  `xml:"ry,attr"`
	Stroke      string   `xml:"stroke,attr,omitempty"`
	StrokeWidth float64  `xml:"stroke-width,attr"`
	Fill        string   `xml:"fill,attr,omitempty"`
	Transform   string   `xml:"transform,attr,omitempty"`
}

type svgRect struct {
	XMLName     xml.Name `xml:"rect"`
	ID          string   `xml:"id,attr,omitempty"`
	X           float64  `xml:"x,attr"`
	Y           float64  `xml:"y,attr"`
	Width       float64  `xml:"width,attr"`
	Height      float64  `xml:"height,attr"`
	Stroke      string   `xml:"stroke,attr,omitempty"`
	StrokeWidth float64  `xml:"stroke-width,attr"`
	Fill        string   `xml:"fill,attr,omitempty"`
	Transform   string   `xml:"transform,attr,omitempty"`
}

// SVG writes d as standalone SVG markup. Shapes are written in painter's
// order with their rotation as a rotate(a cx cy) transform. Selection
// highlight is editor state and never exported.
func SVG(w io.Writer, d *document.Drawing) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: svgNamespace},
			{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(d.Width)},
			{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(d.Height)},
			{Name: xml.Name{Local: "viewBox"}, Value: fmt.Sprintf("0 0 %d %d", d.Width, d.Height)},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}

	if d.Background != "" && d.Background != shape.FillNone {
		bg := svgBackground{Class: backgroundClass, Width: d.Width, Height: d.Height, Fill: d.Background}
		if err := enc.Encode(bg); err != nil {
			return fmt.Errorf("write svg background: %w", err)
		}
	}

	for _, s := range d.ShapeList() {
		if err := enc.Encode(svgElement(s)); err != nil {
			return fmt.Errorf("write svg %s %s: %w", s.Kind(), s.ID, err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgElement(s *shape.Shape) any {
	transform := s.TransformAttr()
	switch g := s.Geometry.(type) {
	case *shape.Line:
		return svgLine{
			ID: s.ID, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2,
			Stroke: s.Style.Stroke, StrokeWidth: s.Style.StrokeWidth,
			Transform: transform,
		}
	case *shape.Ellipse:
		return svgEllipse{
			ID: s.ID, CX: g.CX, CY: g.CY, RX: g.RX, RY: g.RY,
			Stroke: s.Style.Stroke, StrokeWidth: s.Style.StrokeWidth,
			Fill: fillAttr(s.Style.Fill), Transform: transform,
		}
	case *shape.Rect:
		return svgRect{
			ID: s.ID, X: g.X, Y: g.Y, Width: g.Width, Height: g.Height,
			Stroke: s.Style.Stroke, StrokeWidth: s.Style.StrokeWidth,
			Fill: fillAttr(s.Style.Fill), Transform: transform,
		}
	}
	panic(fmt.Sprintf("export: unhandled geometry %T", s.Geometry))
}

func fillAttr(fill string) string {
	if fill == "" {
		return shape.FillNone
	}
	return fill
}

// ParseSVG reads markup written by SVG back into a drawing. Elements other
// than line, ellipse and rect are skipped. A shape keeps its id when it is a
// valid shape id; otherwise it gets a fresh one.
func ParseSVG(r io.Reader) (*document.Drawing, error) {
	dec := xml.NewDecoder(r)

	var d *document.Drawing
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if d == nil {
			if start.Name.Local != "svg" {
				return nil, fmt.Errorf("parse svg: root element %q: %w", start.Name.Local, ErrNotSVG)
			}
			d, err = parseRoot(start)
			if err != nil {
				return nil, err
			}
			continue
		}

		attrs := attrMap(start)
		if start.Name.Local == "rect" && attrs["class"] == backgroundClass {
			d.Background = attrs["fill"]
			continue
		}
		kind, err := shape.ParseKind(start.Name.Local)
		if err != nil {
			continue
		}
		s, err := parseShape(kind, attrs)
		if err != nil {
			return nil, fmt.Errorf("parse svg %s: %w", kind, err)
		}
		d.Insert(s, -1)
	}

	if d == nil {
		return nil, fmt.Errorf("parse svg: %w", ErrNotSVG)
	}
	return d, nil
}

func parseRoot(start xml.StartElement) (*document.Drawing, error) {
	attrs := attrMap(start)
	width, err := parseDimension(attrs["width"], defaultWidth)
	if err != nil {
		return nil, fmt.Errorf("parse svg width: %w", err)
	}
	height, err := parseDimension(attrs["height"], defaultHeight)
	if err != nil {
		return nil, fmt.Errorf("parse svg height: %w", err)
	}
	return document.NewEmptyDrawing(typeid.NewDrawingID(), "imported", width, height, ""), nil
}

func parseDimension(v string, fallback int) (int, error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < 0 || f > document.MaxCanvasSize {
		return 0, fmt.Errorf("%w: %s", document.ErrCanvasSize, v)
	}
	return int(f), nil
}

func parseShape(kind shape.Kind, attrs map[string]string) (*shape.Shape, error) {
	g, err := shape.DefaultGeometry(kind)
	if err != nil {
		return nil, err
	}

	id := attrs["id"]
	if typeid.Validate(id, typeid.PrefixShape) != nil {
		id = typeid.NewShapeID()
	}

	s := &shape.Shape{
		ID:       id,
		Geometry: g,
		Style: shape.Style{
			Stroke:      attrs["stroke"],
			StrokeWidth: 1,
			Fill:        shape.FillNone,
		},
		Rotation: geom.ParseRotation(attrs["transform"]),
	}
	if kind != shape.KindLine {
		if fill, ok := attrs["fill"]; ok {
			s.Style.Fill = fill
		}
	}

	// Absent geometry attributes are 0, as in SVG; SetAttr applies the
	// minimum sizes.
	for _, name := range shape.AttrNames(kind) {
		v, err := parseNumber(attrs[name])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		if err := s.SetAttr(name, v); err != nil {
			return nil, err
		}
	}
	if sw, ok := attrs["stroke-width"]; ok {
		v, err := parseNumber(sw)
		if err != nil {
			return nil, fmt.Errorf("attribute stroke-width: %w", err)
		}
		if err := s.SetAttr("stroke-width", v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseNumber(v string) (float64, error) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func attrMap(start xml.StartElement) map[string]string {
	m := make(map[string]string, len(start.Attr))
	for _, a := range start.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}
