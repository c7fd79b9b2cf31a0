//go:build js && wasm

package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/annotator/internal/config"
	"github.com/inamate/annotator/internal/engine"
	"github.com/inamate/annotator/internal/scene"
	"github.com/inamate/annotator/internal/textlayout"
)

var eng *engine.Engine

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	opts := scene.Options{Measurer: textlayout.NewMeasurer()}
	if cfg, err := config.Load(); err == nil {
		opts.HistoryLimit = cfg.HistoryLimit
		opts.HandleSize = cfg.HandleSize
	} else {
		slog.Warn("load config, using defaults", "error", err)
	}
	eng = engine.NewEngine(opts)

	// Create the engine API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadScene", js.FuncOf(loadScene))
	api.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	api.Set("saveScene", js.FuncOf(saveScene))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("doubleClick", js.FuncOf(doubleClick))
	api.Set("secondaryDown", js.FuncOf(secondaryDown))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("keyUp", js.FuncOf(keyUp))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setBoardMode", js.FuncOf(setBoardMode))
	api.Set("setPenColor", js.FuncOf(setPenColor))
	api.Set("setStyle", js.FuncOf(setStyle))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("editSelection", js.FuncOf(editSelection))
	api.Set("submitText", js.FuncOf(submitText))
	api.Set("cancelText", js.FuncOf(cancelText))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getState", js.FuncOf(getState))
	api.Set("pendingTextRequest", js.FuncOf(pendingTextRequest))

	// Register on global scope
	js.Global().Set("annotatorEngine", api)

	// Signal that WASM is ready
	js.Global().Set("annotatorWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

// point reads x, y and optional shift, ctrl, alt flags.
func point(args []js.Value) (x, y float64, mods scene.Modifiers, ok bool) {
	if len(args) < 2 {
		return 0, 0, 0, false
	}
	return args[0].Float(), args[1].Float(), modsFrom(args[2:]), true
}

func modsFrom(args []js.Value) scene.Modifiers {
	flag := func(i int) bool { return len(args) > i && args[i].Truthy() }
	return engine.Mods(flag(0), flag(1), flag(2))
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing scene JSON"})
	}
	join := len(args) > 1 && args[1].Truthy()
	report, err := eng.LoadScene(args[0].String(), join)
	if err != nil {
		return errorResult(err)
	}
	problems := make([]any, len(report.Problems))
	for i, p := range report.Problems {
		problems[i] = p.Error()
	}
	return js.ValueOf(map[string]any{
		"ok":       true,
		"total":    report.Total,
		"loaded":   report.Loaded,
		"skipped":  report.Skipped,
		"problems": problems,
	})
}

func loadSampleScene(this js.Value, args []js.Value) any {
	eng.LoadSampleScene()
	return okResult()
}

func saveScene(this js.Value, args []js.Value) any {
	data, err := eng.SaveScene()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(data)
}

func pointerDown(this js.Value, args []js.Value) any {
	if x, y, mods, ok := point(args); ok {
		eng.PointerDown(x, y, mods)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) any {
	if x, y, mods, ok := point(args); ok {
		eng.PointerMove(x, y, mods)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) any {
	if x, y, mods, ok := point(args); ok {
		eng.PointerUp(x, y, mods)
	}
	return nil
}

func doubleClick(this js.Value, args []js.Value) any {
	if x, y, mods, ok := point(args); ok {
		eng.DoubleClick(x, y, mods)
	}
	return nil
}

func secondaryDown(this js.Value, args []js.Value) any {
	if x, y, _, ok := point(args); ok {
		eng.SecondaryDown(x, y)
	}
	return nil
}

func keyDown(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.KeyDown(args[0].String(), modsFrom(args[1:])))
}

func keyUp(this js.Value, args []js.Value) any {
	if len(args) > 0 {
		eng.KeyUp(args[0].String())
	}
	return nil
}

func setTool(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	if err := eng.SetTool(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setBoardMode(this js.Value, args []js.Value) any {
	eng.SetBoardMode(len(args) > 0 && args[0].Truthy())
	return nil
}

func setPenColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	if err := eng.SetPenColor(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// setStyle(name, value) updates one default used for new shapes.
func setStyle(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return nil
	}
	v := args[1]
	switch args[0].String() {
	case "alpha":
		eng.SetAlpha(v.Int())
	case "lineThickness":
		eng.SetLineThickness(v.Int())
	case "lineStyle":
		eng.SetLineStyle(v.Int())
	case "filled":
		eng.SetFilled(v.Truthy())
	case "brushSize":
		eng.SetBrushSize(v.Int())
	case "arrowHeadSize":
		eng.SetArrowHeadSize(v.Int())
	case "boardBackground":
		if err := eng.SetBoardBackground(v.String()); err != nil {
			return errorResult(err)
		}
	case "boardPen":
		if err := eng.SetBoardPen(v.String()); err != nil {
			return errorResult(err)
		}
	}
	return nil
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.ClearSelection()
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

// editSelection(op, value) applies an undoable edit to the selected shapes.
func editSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	var v js.Value
	if len(args) > 1 {
		v = args[1]
	}
	switch args[0].String() {
	case "color":
		if err := eng.SetSelectionColor(v.String()); err != nil {
			return errorResult(err)
		}
	case "alpha":
		eng.SetSelectionAlpha(v.Int())
	case "toggleFill":
		eng.ToggleSelectionFill()
	case "lineStyle":
		eng.SetSelectionLineStyle(v.Int())
	case "lineThickness":
		eng.SetSelectionLineThickness(v.Int())
	case "arrowHeadSize":
		eng.SetSelectionArrowHeadSize(v.Int())
	case "delete":
		eng.DeleteSelected()
	case "selectAll":
		eng.SelectAll()
	case "copy":
		eng.Copy()
	case "paste":
		if len(args) > 2 {
			eng.Paste(args[1].Float(), args[2].Float())
		}
	case "clear":
		eng.Clear()
	}
	return nil
}

func submitText(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing text JSON"})
	}
	id, err := eng.SubmitText(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "id": id})
}

func cancelText(this js.Value, args []js.Value) any {
	eng.CancelText()
	return nil
}

func undo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Redo())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelection())
}

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetState())
}

func pendingTextRequest(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.PendingTextRequest())
}
