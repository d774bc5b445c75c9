// Package engine is the single-user front of the editor: it owns one drawing
// and its editor and speaks strings and JSON so a browser bridge can drive it
// without knowing Go types.
package engine

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/editor"
	"github.com/inamate/sketchpad/internal/export"
	"github.com/inamate/sketchpad/internal/geom"
)

const (
	defaultDrawingID = "drw_local"
	defaultWidth     = 800
	defaultHeight    = 600
)

// Engine processes commands from the frontend and returns query results.
type Engine struct {
	drawing *document.Drawing
	editor  *editor.Editor
	opts    []editor.Option
}

// NewEngine creates an engine over an empty drawing.
func NewEngine(opts ...editor.Option) *Engine {
	e := &Engine{opts: opts}
	e.load(document.NewEmptyDrawing(defaultDrawingID, "untitled", defaultWidth, defaultHeight, "#ffffff"))
	return e
}

// load swaps in d with a fresh editor; toolbar values carry over.
func (e *Engine) load(d *document.Drawing) {
	opts := e.opts
	if e.editor != nil {
		opts = append(append([]editor.Option{}, e.opts...), editor.WithToolbar(e.editor.Toolbar()))
	}
	e.drawing = d
	e.editor = editor.New(d, opts...)
}

// --- Commands (frontend → backend) ---

// LoadDocument loads a drawing from JSON. Selection and history start empty.
func (e *Engine) LoadDocument(jsonData string) error {
	d, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	e.load(d)
	return nil
}

// LoadSampleDocument loads the built-in sample drawing.
func (e *Engine) LoadSampleDocument(drawingID string) {
	e.load(document.NewSampleDrawing(drawingID))
}

// ImportSVG replaces the drawing with one parsed from SVG markup.
func (e *Engine) ImportSVG(markup string) error {
	d, err := export.ParseSVG(bytes.NewBufferString(markup))
	if err != nil {
		return err
	}
	e.load(d)
	return nil
}

func (e *Engine) AddShape(kind string) { e.editor.AddShape(kind) }

func (e *Engine) DeleteSelected() { e.editor.DeleteSelected() }

func (e *Engine) UpdateSelectedStyle(stroke string, width float64, fill string) {
	e.editor.UpdateSelectedStyle(stroke, width, fill)
}

func (e *Engine) SetSelectedAttr(name string, v float64) bool {
	return e.editor.SetSelectedAttr(name, v)
}

func (e *Engine) Undo() { e.editor.Undo() }

func (e *Engine) PointerDown(x, y float64) { e.editor.PointerDown(editor.PointerEvent{X: x, Y: y}) }

func (e *Engine) PointerMove(x, y float64) { e.editor.PointerMove(editor.PointerEvent{X: x, Y: y}) }

func (e *Engine) PointerUp(x, y float64) { e.editor.PointerUp(editor.PointerEvent{X: x, Y: y}) }

func (e *Engine) Cancel() { e.editor.Cancel() }

// SetView sets zoom and pan: screen = local*zoom + pan. A non-positive zoom
// is ignored.
func (e *Engine) SetView(zoom, panX, panY float64) {
	if zoom <= 0 {
		return
	}
	e.drawing.SetView(geom.Translate(panX, panY).Multiply(geom.Scale(zoom, zoom)))
	e.editor.RefreshHandles()
}

// --- Queries (frontend ← backend) ---

// Render returns the draw commands, selection overlay included, as JSON.
func (e *Engine) Render() string {
	result, err := editor.DrawCommandsToJSON(e.editor.Render())
	if err != nil {
		slog.Error("marshal draw commands", "error", err)
	}
	return result
}

// HitTest returns the id of the topmost shape at the screen position, or "".
func (e *Engine) HitTest(x, y float64) string {
	return e.editor.HitTest(x, y)
}

// GetState returns the selection, session and toolbar state as JSON.
func (e *Engine) GetState() string {
	data, err := json.Marshal(e.editor.State())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetView returns the view transform as [a, b, c, d, e, f].
func (e *Engine) GetView() []float64 {
	return e.drawing.View().ToSlice()
}

// GetDocument returns the drawing as JSON.
func (e *Engine) GetDocument() string {
	data, err := json.Marshal(e.drawing)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ExportSVG returns the drawing as SVG markup.
func (e *Engine) ExportSVG() (string, error) {
	var buf bytes.Buffer
	if err := export.SVG(&buf, e.drawing); err != nil {
		return "", err
	}
	return buf.String(), nil
}
