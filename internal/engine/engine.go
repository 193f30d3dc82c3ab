package engine

import (
	"github.com/gridline/gridline/backend-go/internal/typeid"
)

// KindDef is the capability set a node family registers for one
// component kind: body geometry, port placement, and whether ports are
// single-use. The engine never knows how to paint a node body — only
// where and when to ask.
type KindDef struct {
	Draw           DrawFunc
	LayoutPorts    LayoutPortsFunc
	ExclusivePorts bool
}

// Editor is the interactive diagram engine facade. It owns the scene,
// viewport, selection, history, interaction controller, and renderer.
// All methods are meant to be called from a single UI goroutine; the
// only concurrent actor is the Animator, which touches atomic
// animation-only state.
type Editor struct {
	scene      *Scene
	viewport   *Viewport
	hits       *HitTester
	selection  *SelectionManager
	history    *History
	controller *Controller
	renderer   *Renderer
	animator   *Animator

	kinds map[string]KindDef

	onSelectionChanged func()
	onHistoryChanged   func(canUndo, canRedo bool)
	onConnection       func(l *ConnectionLine, created bool)
}

// NewEditor creates an empty editor with the given style and redraw
// request callback (used by the animator; may be nil for headless use).
func NewEditor(style Style, redraw func()) *Editor {
	scene := NewScene()
	viewport := NewViewport()
	hits := NewHitTester(viewport)
	selection := NewSelectionManager()
	history := NewHistory()
	controller := NewController(scene, viewport, hits, selection, history)

	ed := &Editor{
		scene:      scene,
		viewport:   viewport,
		hits:       hits,
		selection:  selection,
		history:    history,
		controller: controller,
		renderer:   NewRenderer(style),
		animator:   NewAnimator(redraw),
		kinds:      make(map[string]KindDef),
	}

	controller.SetLineIDFunc(typeid.NewLineID)
	controller.SetRedraw(redraw)
	controller.SetOnConnection(func(l *ConnectionLine, created bool) {
		if ed.onConnection != nil {
			ed.onConnection(l, created)
		}
	})
	selection.SetOnChange(func() {
		if ed.onSelectionChanged != nil {
			ed.onSelectionChanged()
		}
	})
	history.SetOnChange(func(canUndo, canRedo bool) {
		if ed.onHistoryChanged != nil {
			ed.onHistoryChanged(canUndo, canRedo)
		}
	})

	return ed
}

// --- Accessors ---

func (ed *Editor) Scene() *Scene                 { return ed.scene }
func (ed *Editor) Viewport() *Viewport           { return ed.viewport }
func (ed *Editor) HitTester() *HitTester         { return ed.hits }
func (ed *Editor) Selection() *SelectionManager  { return ed.selection }
func (ed *Editor) History() *History             { return ed.history }
func (ed *Editor) Controller() *Controller       { return ed.controller }
func (ed *Editor) Renderer() *Renderer           { return ed.renderer }
func (ed *Editor) Animator() *Animator           { return ed.animator }
func (ed *Editor) AnimationPhase() int64         { return ed.animator.Phase() }

// --- Events ---

// SetOnSelectionChanged registers the selection-changed event handler.
func (ed *Editor) SetOnSelectionChanged(fn func()) {
	ed.onSelectionChanged = fn
}

// SetOnHistoryChanged registers the history-changed (undo/redo
// availability) event handler.
func (ed *Editor) SetOnHistoryChanged(fn func(canUndo, canRedo bool)) {
	ed.onHistoryChanged = fn
}

// SetOnConnection registers the connection-created/removed event handler.
func (ed *Editor) SetOnConnection(fn func(l *ConnectionLine, created bool)) {
	ed.onConnection = fn
}

// --- Node family registry ---

// RegisterKind binds a component kind to its family-supplied callbacks.
func (ed *Editor) RegisterKind(kind string, def KindDef) {
	ed.kinds[kind] = def
}

// NewComponent creates a component of a registered kind with a fresh id,
// wiring the family's draw and port-layout callbacks. Unregistered kinds
// fall back to the default rectangle body and edge port layout.
func (ed *Editor) NewComponent(kind string, x, y, w, h float64, inputs, outputs int) *Component {
	c := NewComponent(typeid.NewComponentID(), kind, x, y, w, h, inputs, outputs)
	ed.applyKind(c)
	return c
}

func (ed *Editor) applyKind(c *Component) {
	def, ok := ed.kinds[c.Kind]
	if !ok {
		return
	}
	if def.Draw != nil {
		c.SetDraw(def.Draw)
	}
	if def.LayoutPorts != nil {
		c.SetPortLayout(def.LayoutPorts)
	}
	c.ExclusivePorts = def.ExclusivePorts
}

// --- Scene operations (history-wrapped) ---

// AddComponent adds a component as one undo step.
func (ed *Editor) AddComponent(c *Component) {
	ed.history.Execute(&AddComponentCommand{Scene: ed.scene, Component: c})
}

// RemoveComponent removes a component (and its attached lines) as one
// undo step and drops it from the selection.
func (ed *Editor) RemoveComponent(c *Component) {
	ed.selection.Drop(c)
	ed.history.Execute(&RemoveComponentCommand{Scene: ed.scene, Component: c})
}

// Connect joins an out-port to an in-port as one undo step. Incompatible
// or exhausted ports are rejected via the boolean, never an error.
func (ed *Editor) Connect(out, in *Port) (*ConnectionLine, bool) {
	line, ok := ed.scene.BuildConnection(typeid.NewLineID(), out, in, ed.controller.DefaultRouting)
	if !ok {
		return nil, false
	}
	ed.history.Execute(&ConnectCommand{Scene: ed.scene, Line: line})
	if ed.onConnection != nil {
		ed.onConnection(line, true)
	}
	return line, true
}

// Disconnect removes a line as one undo step.
func (ed *Editor) Disconnect(l *ConnectionLine) {
	ed.history.Execute(&DisconnectCommand{Scene: ed.scene, Line: l})
	if ed.onConnection != nil {
		ed.onConnection(l, false)
	}
}

// Undo reverses the most recent command.
func (ed *Editor) Undo() bool { return ed.history.Undo() }

// Redo re-applies the most recently undone command.
func (ed *Editor) Redo() bool { return ed.history.Redo() }

// --- Pointer input surface ---

func (ed *Editor) PointerDown(screen Point, mods Modifiers) {
	ed.controller.PointerDown(screen, mods)
}

func (ed *Editor) PointerMove(screen Point, mods Modifiers) {
	ed.controller.PointerMove(screen, mods)
}

func (ed *Editor) PointerUp(screen Point, mods Modifiers) {
	ed.controller.PointerUp(screen, mods)
}

func (ed *Editor) Wheel(screen Point, delta float64) {
	ed.controller.Wheel(screen, delta)
}

// KeyDown handles keyboard input. Escape cancels the active gesture.
func (ed *Editor) KeyDown(key string) {
	if key == "Escape" {
		ed.controller.Cancel()
	}
}

// --- Rendering ---

// Render compiles the current frame into draw commands.
func (ed *Editor) Render(screenWidth, screenHeight float64) []DrawCommand {
	return ed.renderer.Compile(ed, screenWidth, screenHeight)
}

// HitTest returns the id of the topmost addressable object at a screen
// point, or "". Only lines and components are addressable; lines win
// where they overlap a body because they draw above it. Ports have no
// ids of their own and resolve through SelectionManager.SelectAt and
// the interaction controller instead.
func (ed *Editor) HitTest(screen Point) string {
	world := ed.viewport.ScreenToWorld(screen)
	if line := ed.hits.LineAt(ed.scene, world); line != nil {
		return line.ID
	}
	if c := ed.hits.ComponentAt(ed.scene, world); c != nil {
		return c.ID
	}
	return ""
}
