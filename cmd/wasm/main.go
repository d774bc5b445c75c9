//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/sketchpad/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadDrawing", js.FuncOf(loadDrawing))
	api.Set("loadSampleDrawing", js.FuncOf(loadSampleDrawing))
	api.Set("importSVG", js.FuncOf(importSVG))
	api.Set("addShape", js.FuncOf(addShape))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("updateSelectedStyle", js.FuncOf(updateSelectedStyle))
	api.Set("setSelectedAttr", js.FuncOf(setSelectedAttr))
	api.Set("undo", js.FuncOf(undo))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("cancel", js.FuncOf(cancel))
	api.Set("setView", js.FuncOf(setView))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getState", js.FuncOf(getState))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("exportSVG", js.FuncOf(exportSVG))

	// Register on global scope
	js.Global().Set("sketchpadEngine", api)

	// Signal that WASM is ready
	js.Global().Set("sketchpadWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// point reads (x, y) from the first two arguments.
func point(args []js.Value) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), args[1].Float(), true
}

// --- Command Handlers ---

func loadDrawing(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing drawing JSON"})
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDrawing(this js.Value, args []js.Value) interface{} {
	drawingID := "drw_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		drawingID = args[0].String()
	}
	eng.LoadSampleDocument(drawingID)
	return okResult()
}

func importSVG(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing svg markup"})
	}
	if err := eng.ImportSVG(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func addShape(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.AddShape(args[0].String())
	return nil
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	eng.DeleteSelected()
	return nil
}

// updateSelectedStyle(stroke, strokeWidth, fill)
func updateSelectedStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.UpdateSelectedStyle(args[0].String(), args[1].Float(), args[2].String())
	return nil
}

func setSelectedAttr(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetSelectedAttr(args[0].String(), args[1].Float()))
}

func undo(this js.Value, args []js.Value) interface{} {
	eng.Undo()
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if x, y, ok := point(args); ok {
		eng.PointerDown(x, y)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if x, y, ok := point(args); ok {
		eng.PointerMove(x, y)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if x, y, ok := point(args); ok {
		eng.PointerUp(x, y)
	}
	return nil
}

func cancel(this js.Value, args []js.Value) interface{} {
	eng.Cancel()
	return nil
}

// setView(zoom, panX, panY)
func setView(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.SetView(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(x, y))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetState())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func exportSVG(this js.Value, args []js.Value) interface{} {
	markup, err := eng.ExportSVG()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(markup)
}
