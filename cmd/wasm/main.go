//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/gridline/gridline/backend-go/internal/document"
	"github.com/gridline/gridline/backend-go/internal/engine"
)

var ed *engine.Editor

// redrawCallback is invoked when the animator (or a completed gesture)
// wants a new frame.
var redrawCallback js.Value = js.Undefined()

func requestRedraw() {
	if redrawCallback.Type() == js.TypeFunction {
		redrawCallback.Invoke()
	}
}

func main() {
	ed = engine.NewEditor(engine.DefaultStyle(), requestRedraw)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("setRouting", js.FuncOf(setRouting))
	api.Set("setGrid", js.FuncOf(setGrid))
	api.Set("startAnimation", js.FuncOf(startAnimation))
	api.Set("stopAnimation", js.FuncOf(stopAnimation))
	api.Set("setRedrawCallback", js.FuncOf(setRedrawCallback))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("toSnapshot", js.FuncOf(toSnapshot))
	api.Set("canUndo", js.FuncOf(canUndo))
	api.Set("canRedo", js.FuncOf(canRedo))

	js.Global().Set("gridlineEngine", api)
	js.Global().Set("gridlineWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(args[0].String()), &doc); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	skipped, err := ed.LoadSnapshot(&doc)
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	result := map[string]interface{}{"ok": true}
	if len(skipped) > 0 {
		lines := make([]interface{}, len(skipped))
		for i, s := range skipped {
			lines[i] = map[string]interface{}{"lineId": s.LineID, "reason": s.Reason}
		}
		result["skippedLines"] = lines
	}
	return js.ValueOf(result)
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	ed.LoadSampleDocument()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	pt, mods, ok := pointerArgs(args)
	if !ok {
		return nil
	}
	ed.PointerDown(pt, mods)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	pt, mods, ok := pointerArgs(args)
	if !ok {
		return nil
	}
	ed.PointerMove(pt, mods)
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	pt, mods, ok := pointerArgs(args)
	if !ok {
		return nil
	}
	ed.PointerUp(pt, mods)
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	ed.Wheel(engine.Point{X: args[0].Float(), Y: args[1].Float()}, args[2].Float())
	return nil
}

func keyDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.KeyDown(args[0].String())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Redo())
}

func setRouting(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	switch mode := engine.RoutingMode(args[0].String()); mode {
	case engine.RoutingStraight, engine.RoutingOrthogonal, engine.RoutingCurved:
		ed.Controller().DefaultRouting = mode
	}
	return nil
}

func setGrid(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.Renderer().GridEnabled = args[0].Bool()
	return nil
}

func startAnimation(this js.Value, args []js.Value) interface{} {
	ed.Animator().Start()
	return nil
}

func stopAnimation(this js.Value, args []js.Value) interface{} {
	ed.Animator().Stop()
	return nil
}

func setRedrawCallback(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		redrawCallback = js.Undefined()
		return nil
	}
	redrawCallback = args[0]
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("[]")
	}
	commands := ed.Render(args[0].Float(), args[1].Float())
	out, err := engine.DrawCommandsToJSON(commands)
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(ed.HitTest(engine.Point{X: args[0].Float(), Y: args[1].Float()}))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	var ids []interface{}
	for _, c := range ed.Selection().Components() {
		ids = append(ids, c.ID)
	}
	for _, l := range ed.Selection().Lines() {
		ids = append(ids, l.ID)
	}
	return js.ValueOf(ids)
}

func toSnapshot(this js.Value, args []js.Value) interface{} {
	doc := ed.ToSnapshot()
	data, err := json.Marshal(doc)
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(string(data))
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.History().CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.History().CanRedo())
}

func pointerArgs(args []js.Value) (engine.Point, engine.Modifiers, bool) {
	if len(args) < 2 {
		return engine.Point{}, engine.Modifiers{}, false
	}
	pt := engine.Point{X: args[0].Float(), Y: args[1].Float()}

	var mods engine.Modifiers
	if len(args) >= 3 && args[2].Type() == js.TypeObject {
		m := args[2]
		mods.Additive = m.Get("additive").Truthy()
		mods.Secondary = m.Get("secondary").Truthy()
		mods.Pan = m.Get("pan").Truthy()
	}
	return pt, mods, true
}
