package collab

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/editor"
	"github.com/inamate/sketchpad/internal/shape"
)

var ErrUnknownOperation = errors.New("unknown operation type")

// DrawingState holds the authoritative drawing of a room and the one editor
// every client of the room drives. It is owned by the hub goroutine.
type DrawingState struct {
	drawing   *document.Drawing
	editor    *editor.Editor
	serverSeq int64
}

// NewDrawingState wraps d in a fresh editor.
func NewDrawingState(d *document.Drawing, opts ...editor.Option) *DrawingState {
	return &DrawingState{
		drawing: d,
		editor:  editor.New(d, opts...),
	}
}

// Drawing returns the live drawing. Callers must not keep it past the
// current hub turn; use Snapshot for that.
func (ds *DrawingState) Drawing() *document.Drawing {
	return ds.drawing
}

func (ds *DrawingState) Editor() *editor.Editor {
	return ds.editor
}

// Snapshot returns a deep copy of the drawing without editor state.
func (ds *DrawingState) Snapshot() *document.Drawing {
	snap := ds.drawing.Snapshot()
	for _, s := range snap.Shapes {
		s.Highlighted = false
	}
	return snap
}

// Seq returns the number of operations applied so far.
func (ds *DrawingState) Seq() int64 {
	return ds.serverSeq
}

// ApplyOperation feeds op to the editor and returns the new server sequence.
// Editor no-ops (nothing selected, empty history) still advance the
// sequence; only malformed operations are rejected.
func (ds *DrawingState) ApplyOperation(op Operation) (int64, error) {
	if err := ds.apply(op); err != nil {
		return 0, err
	}
	ds.serverSeq++
	return ds.serverSeq, nil
}

func (ds *DrawingState) apply(op Operation) error {
	e := ds.editor
	switch op.Type {
	case OpPointerDown, OpPointerMove, OpPointerUp:
		if !finite(op.X, op.Y) {
			return fmt.Errorf("%s: non-finite position", op.Type)
		}
		ev := editor.PointerEvent{X: op.X, Y: op.Y}
		switch op.Type {
		case OpPointerDown:
			e.PointerDown(ev)
		case OpPointerMove:
			e.PointerMove(ev)
		default:
			e.PointerUp(ev)
		}
	case OpSessionCancel:
		e.Cancel()
	case OpShapeAdd:
		if _, err := shape.ParseKind(op.Kind); err != nil {
			return err
		}
		e.AddShape(op.Kind)
	case OpSelectionDelete:
		e.DeleteSelected()
	case OpStyleUpdate:
		if !finite(op.StrokeWidth) || op.StrokeWidth < 0 {
			return fmt.Errorf("%s: invalid stroke width %v", op.Type, op.StrokeWidth)
		}
		e.UpdateSelectedStyle(op.Stroke, op.StrokeWidth, op.Fill)
	case OpAttrSet:
		if !e.SetSelectedAttr(op.Attr, op.Value) {
			slog.Debug("attribute edit had no effect", "attr", op.Attr, "drawing", ds.drawing.ID)
		}
	case OpHistoryUndo:
		e.Undo()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
	return nil
}

// Scene renders the current draw commands and editor state.
func (ds *DrawingState) Scene(withDrawing bool) ScenePayload {
	p := ScenePayload{
		ServerSeq: ds.serverSeq,
		Commands:  ds.editor.Render(),
		State:     ds.editor.State(),
	}
	if withDrawing {
		p.Drawing = ds.Snapshot()
	}
	return p
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
