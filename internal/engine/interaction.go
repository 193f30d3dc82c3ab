package engine

import "math"

// InteractionState is the current pointer gesture.
type InteractionState int

const (
	StateIdle InteractionState = iota
	StateDraggingComponent
	StateResizingComponent
	StateDrawingLine
	StateRectSelecting
	StatePanning
)

// Modifiers are the keyboard/button flags accompanying a pointer event.
type Modifiers struct {
	// Additive toggles selection membership instead of replacing it
	// (shift/ctrl in a typical host).
	Additive bool
	// Secondary is the right/alternate button; it cancels an
	// in-progress gesture.
	Secondary bool
	// Pan requests viewport panning instead of rect selection on empty
	// canvas (space/middle button in a typical host).
	Pan bool
}

// Controller turns raw pointer/keyboard input into scene mutations,
// selection changes, and history commands. All input positions are in
// screen space; the controller converts through the viewport.
type Controller struct {
	scene     *Scene
	viewport  *Viewport
	hits      *HitTester
	selection *SelectionManager
	history   *History

	state InteractionState

	// DraggingComponent
	dragComponent *Component
	dragOrigin    Point // component position at gesture start
	grabOffset    Point // world offset from pointer to component origin

	// ResizingComponent
	resizeComponent *Component
	resizeHandle    Handle
	resizeOrigin    Rect

	// DrawingLine
	sourcePort *Port
	preview    *ConnectionLine

	// RectSelecting
	rectAnchor  Point
	rectCurrent Point

	// Panning
	lastScreen Point

	// DefaultRouting is the routing mode applied to newly drawn lines.
	DefaultRouting RoutingMode

	newLineID    func() string
	onConnection func(l *ConnectionLine, created bool)
	redraw       func()
}

// NewController wires the interaction state machine to its collaborators.
func NewController(scene *Scene, viewport *Viewport, hits *HitTester, selection *SelectionManager, history *History) *Controller {
	return &Controller{
		scene:          scene,
		viewport:       viewport,
		hits:           hits,
		selection:      selection,
		history:        history,
		DefaultRouting: RoutingCurved,
	}
}

// SetLineIDFunc sets the generator for new connection line ids.
func (ctl *Controller) SetLineIDFunc(fn func() string) {
	ctl.newLineID = fn
}

// SetOnConnection registers a callback fired when a line is created
// (created=true) or removed (created=false) through interaction.
func (ctl *Controller) SetOnConnection(fn func(l *ConnectionLine, created bool)) {
	ctl.onConnection = fn
}

// SetRedraw registers the redraw request callback.
func (ctl *Controller) SetRedraw(fn func()) {
	ctl.redraw = fn
}

// State returns the current gesture state.
func (ctl *Controller) State() InteractionState {
	return ctl.state
}

// Preview returns the in-progress preview line while drawing, or nil.
func (ctl *Controller) Preview() *ConnectionLine {
	if ctl.state != StateDrawingLine {
		return nil
	}
	return ctl.preview
}

// SelectionRect returns the current rubber-band rect in world space and
// whether one is active.
func (ctl *Controller) SelectionRect() (Rect, bool) {
	if ctl.state != StateRectSelecting {
		return Rect{}, false
	}
	return RectFromPoints(ctl.rectAnchor, ctl.rectCurrent), true
}

// PointerDown begins a gesture. Target resolution order: resize handle
// of a selected component, then port, then line, then component body,
// then empty canvas (rubber-band selection or panning).
func (ctl *Controller) PointerDown(screen Point, mods Modifiers) {
	if mods.Secondary {
		ctl.Cancel()
		return
	}
	if ctl.state != StateIdle {
		return
	}

	world := ctl.viewport.ScreenToWorld(screen)
	if !world.IsFinite() {
		return
	}

	for _, c := range ctl.selection.Components() {
		if handle := ctl.hits.HandleAt(c, world); handle != HandleNone {
			ctl.state = StateResizingComponent
			ctl.resizeComponent = c
			ctl.resizeHandle = handle
			ctl.resizeOrigin = c.Bounds()
			return
		}
	}

	if port := ctl.hits.PortAt(ctl.scene, world); port != nil {
		ctl.state = StateDrawingLine
		ctl.sourcePort = port
		ctl.preview = &ConnectionLine{
			Start:   Endpoint{Port: port},
			End:     Endpoint{Point: world},
			Routing: ctl.DefaultRouting,
			Style:   LineStyle{ArrowEnd: true, StrokeWidth: 2},
		}
		ctl.requestRedraw()
		return
	}

	// Lines draw above component bodies, so a click on one selects it
	// instead of starting a drag on the component underneath.
	if line := ctl.hits.LineAt(ctl.scene, world); line != nil {
		if mods.Additive {
			ctl.selection.SelectAdditive(ctl.scene, ctl.hits, world)
		} else {
			ctl.selection.SelectAt(ctl.scene, ctl.hits, world)
		}
		ctl.requestRedraw()
		return
	}

	if c := ctl.hits.ComponentAt(ctl.scene, world); c != nil {
		if mods.Additive {
			ctl.selection.SelectAdditive(ctl.scene, ctl.hits, world)
			ctl.requestRedraw()
			return
		}
		if !ctl.selection.IsComponentSelected(c) {
			ctl.selection.SelectAt(ctl.scene, ctl.hits, world)
		}
		ctl.state = StateDraggingComponent
		ctl.dragComponent = c
		ctl.dragOrigin = c.Position
		ctl.grabOffset = world.Sub(c.Position)
		return
	}

	if mods.Pan {
		ctl.state = StatePanning
		ctl.lastScreen = screen
		return
	}

	ctl.state = StateRectSelecting
	ctl.rectAnchor = world
	ctl.rectCurrent = world
}

// PointerMove advances the active gesture. Component drags re-lay-out
// ports on every move so attached lines stay glued to the body.
func (ctl *Controller) PointerMove(screen Point, mods Modifiers) {
	world := ctl.viewport.ScreenToWorld(screen)

	switch ctl.state {
	case StateDraggingComponent:
		if !world.IsFinite() {
			return
		}
		ctl.dragComponent.SetPosition(world.Sub(ctl.grabOffset))
		ctl.dragComponent.LayoutPorts()
		ctl.requestRedraw()

	case StateResizingComponent:
		if !world.IsFinite() {
			return
		}
		ctl.resizeComponent.SetBounds(resizeBounds(ctl.resizeOrigin, ctl.resizeHandle, world))
		ctl.resizeComponent.LayoutPorts()
		ctl.requestRedraw()

	case StateDrawingLine:
		if !world.IsFinite() {
			return
		}
		ctl.preview.End = Endpoint{Point: world}
		ctl.requestRedraw()

	case StateRectSelecting:
		if !world.IsFinite() {
			return
		}
		ctl.rectCurrent = world
		ctl.requestRedraw()

	case StatePanning:
		ctl.viewport.Pan(screen.Sub(ctl.lastScreen))
		ctl.lastScreen = screen
		ctl.requestRedraw()
	}
}

// PointerUp completes the active gesture. Drags and resizes that
// changed geometry are committed as a single history command; a drawn
// line over a compatible port becomes a ConnectCommand; anything else
// is discarded without touching the scene.
func (ctl *Controller) PointerUp(screen Point, mods Modifiers) {
	world := ctl.viewport.ScreenToWorld(screen)

	switch ctl.state {
	case StateDraggingComponent:
		c := ctl.dragComponent
		if c.Position != ctl.dragOrigin {
			ctl.history.Execute(&MoveCommand{Component: c, From: ctl.dragOrigin, To: c.Position})
		}

	case StateResizingComponent:
		c := ctl.resizeComponent
		if c.Bounds() != ctl.resizeOrigin {
			ctl.history.Execute(&ResizeCommand{Component: c, From: ctl.resizeOrigin, To: c.Bounds()})
		}

	case StateDrawingLine:
		ctl.completeLine(world)

	case StateRectSelecting:
		ctl.selection.SelectRect(ctl.scene, RectFromPoints(ctl.rectAnchor, world))
	}

	ctl.resetGesture()
	ctl.requestRedraw()
}

// completeLine finishes a line-drawing gesture: dropped on a compatible
// port of a different component it becomes a history command; dropped
// anywhere else the preview is discarded.
func (ctl *Controller) completeLine(world Point) {
	target := ctl.hits.PortAt(ctl.scene, world)
	if target == nil {
		return
	}

	out, in := ctl.sourcePort, target
	if out.Direction == PortIn {
		out, in = in, out
	}

	id := ""
	if ctl.newLineID != nil {
		id = ctl.newLineID()
	}
	line, ok := ctl.scene.BuildConnection(id, out, in, ctl.DefaultRouting)
	if !ok {
		return
	}

	ctl.history.Execute(&ConnectCommand{Scene: ctl.scene, Line: line})
	if ctl.onConnection != nil {
		ctl.onConnection(line, true)
	}
}

// Wheel zooms at the cursor. Positive delta zooms in.
func (ctl *Controller) Wheel(screen Point, delta float64) {
	if delta == 0 || math.IsNaN(delta) {
		return
	}
	factor := math.Pow(2, delta/480)
	ctl.viewport.ZoomAt(screen, factor)
	ctl.requestRedraw()
}

// Cancel aborts the in-progress gesture, restoring the scene to its
// state before the gesture began. Escape and right-click route here.
func (ctl *Controller) Cancel() {
	switch ctl.state {
	case StateDraggingComponent:
		ctl.dragComponent.SetPosition(ctl.dragOrigin)
		ctl.dragComponent.LayoutPorts()

	case StateResizingComponent:
		ctl.resizeComponent.SetBounds(ctl.resizeOrigin)
		ctl.resizeComponent.LayoutPorts()
	}

	ctl.resetGesture()
	ctl.requestRedraw()
}

func (ctl *Controller) resetGesture() {
	ctl.state = StateIdle
	ctl.dragComponent = nil
	ctl.resizeComponent = nil
	ctl.resizeHandle = HandleNone
	ctl.sourcePort = nil
	ctl.preview = nil
}

func (ctl *Controller) requestRedraw() {
	if ctl.redraw != nil {
		ctl.redraw()
	}
}

// resizeBounds computes new bounds from the original rect, the grabbed
// handle, and the current pointer position. The opposite corner stays
// fixed; the result never inverts below the minimum size.
func resizeBounds(orig Rect, handle Handle, world Point) Rect {
	var anchor Point
	switch handle {
	case HandleTopLeft:
		anchor = Point{orig.X + orig.Width, orig.Y + orig.Height}
	case HandleTopRight:
		anchor = Point{orig.X, orig.Y + orig.Height}
	case HandleBottomLeft:
		anchor = Point{orig.X + orig.Width, orig.Y}
	default:
		anchor = Point{orig.X, orig.Y}
	}

	r := RectFromPoints(anchor, world)
	if r.Width < MinComponentSize {
		r.Width = MinComponentSize
		if world.X < anchor.X {
			r.X = anchor.X - MinComponentSize
		} else {
			r.X = anchor.X
		}
	}
	if r.Height < MinComponentSize {
		r.Height = MinComponentSize
		if world.Y < anchor.Y {
			r.Y = anchor.Y - MinComponentSize
		} else {
			r.Y = anchor.Y
		}
	}
	return r
}
