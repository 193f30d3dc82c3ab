package engine

import (
	"testing"
)

// editorFixture builds a headless editor with two components placed for
// line drawing: comp_a's out-port at (100,25), comp_b's in-port at
// (300,25). Components are added directly to the scene so the history
// starts empty.
func editorFixture(t *testing.T) (*Editor, *Component, *Component) {
	t.Helper()
	ed := NewEditor(DefaultStyle(), nil)

	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.sink", 300, 0, 100, 50, 1, 0)
	ed.Scene().AddComponent(a)
	ed.Scene().AddComponent(b)
	return ed, a, b
}

func TestDragIsOneUndoStep(t *testing.T) {
	ed, a, _ := editorFixture(t)

	ed.PointerDown(Point{50, 40}, Modifiers{})
	ed.PointerMove(Point{70, 40}, Modifiers{})
	ed.PointerMove(Point{90, 45}, Modifiers{})
	ed.PointerMove(Point{100, 40}, Modifiers{})
	ed.PointerUp(Point{100, 40}, Modifiers{})

	if a.Position != (Point{50, 0}) {
		t.Errorf("position after drag = %v, want (50, 0)", a.Position)
	}
	if !ed.History().CanUndo() {
		t.Fatal("drag must produce an undo step")
	}

	ed.Undo()
	if a.Position != (Point{0, 0}) {
		t.Errorf("position after undo = %v, want origin", a.Position)
	}
	if ed.History().CanUndo() {
		t.Error("a full drag must be exactly one undo step")
	}

	ed.Redo()
	if a.Position != (Point{50, 0}) {
		t.Errorf("position after redo = %v, want (50, 0)", a.Position)
	}
}

func TestDragWithoutMovementLeavesHistoryEmpty(t *testing.T) {
	ed, _, _ := editorFixture(t)

	ed.PointerDown(Point{50, 40}, Modifiers{})
	ed.PointerUp(Point{50, 40}, Modifiers{})

	if ed.History().CanUndo() {
		t.Error("a click without movement must not create history")
	}
}

func TestDragMovesPortsWithComponent(t *testing.T) {
	ed, a, _ := editorFixture(t)

	ed.PointerDown(Point{50, 40}, Modifiers{})
	ed.PointerMove(Point{50, 140}, Modifiers{})

	if got := a.OutputPort(0).Center; got != (Point{100, 125}) {
		t.Errorf("port center during drag = %v, want (100, 125)", got)
	}

	ed.PointerUp(Point{50, 140}, Modifiers{})
}

func TestLineDrawGesture(t *testing.T) {
	ed, a, b := editorFixture(t)

	ed.PointerDown(Point{100, 25}, Modifiers{})
	if ed.Controller().State() != StateDrawingLine {
		t.Fatalf("state = %v, want drawing line", ed.Controller().State())
	}

	ed.PointerMove(Point{200, 60}, Modifiers{})
	preview := ed.Controller().Preview()
	if preview == nil {
		t.Fatal("expected a preview line during the gesture")
	}
	if preview.End.Position() != (Point{200, 60}) {
		t.Errorf("preview end = %v, want pointer position", preview.End.Position())
	}

	ed.PointerUp(Point{300, 25}, Modifiers{})

	lines := ed.Scene().Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after gesture, got %d", len(lines))
	}
	l := lines[0]
	if l.Start.Port != a.OutputPort(0) || l.End.Port != b.InputPort(0) {
		t.Error("line endpoints not bound to the expected ports")
	}
	if !ed.History().CanUndo() {
		t.Fatal("connect must produce an undo step")
	}

	ed.Undo()
	if len(ed.Scene().Lines()) != 0 {
		t.Error("undo must remove the drawn line")
	}
}

func TestLineDrawFromInPortSwapsDirection(t *testing.T) {
	ed, a, b := editorFixture(t)

	// Start on comp_b's in-port and drop on comp_a's out-port.
	ed.PointerDown(Point{300, 25}, Modifiers{})
	ed.PointerUp(Point{100, 25}, Modifiers{})

	lines := ed.Scene().Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	if l.Start.Port != a.OutputPort(0) || l.End.Port != b.InputPort(0) {
		t.Error("line must always run out-port -> in-port regardless of draw direction")
	}
}

func TestLineDrawDroppedOnNothing(t *testing.T) {
	ed, _, _ := editorFixture(t)

	ed.PointerDown(Point{100, 25}, Modifiers{})
	ed.PointerUp(Point{200, 200}, Modifiers{})

	if len(ed.Scene().Lines()) != 0 {
		t.Error("dropping on empty canvas must not create a line")
	}
	if ed.History().CanUndo() {
		t.Error("abandoned line draw must not create history")
	}
	if ed.Controller().Preview() != nil {
		t.Error("preview must be cleared after the gesture")
	}
}

func TestClickSelectsLine(t *testing.T) {
	ed, a, b := editorFixture(t)
	line, ok := ed.Scene().Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight)
	if !ok {
		t.Fatal("fixture connect failed")
	}

	// Click the line body, away from both ports.
	ed.PointerDown(Point{200, 25}, Modifiers{})
	if ed.Controller().State() != StateIdle {
		t.Fatalf("state = %v, clicking a line must not start a gesture", ed.Controller().State())
	}
	ed.PointerUp(Point{200, 25}, Modifiers{})

	lines := ed.Selection().Lines()
	if len(lines) != 1 || lines[0] != line {
		t.Fatalf("selected lines = %v, want line_ab", lines)
	}
	if !line.Selected {
		t.Error("clicked line must carry the Selected flag")
	}
	if ed.History().CanUndo() {
		t.Error("selecting a line must not create history")
	}
}

func TestAdditiveClickTogglesLine(t *testing.T) {
	ed, a, b := editorFixture(t)
	line, ok := ed.Scene().Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight)
	if !ok {
		t.Fatal("fixture connect failed")
	}

	ed.PointerDown(Point{200, 25}, Modifiers{})
	ed.PointerUp(Point{200, 25}, Modifiers{})
	ed.PointerDown(Point{50, 40}, Modifiers{Additive: true}) // comp_a joins

	if len(ed.Selection().Lines()) != 1 || !ed.Selection().IsComponentSelected(a) {
		t.Fatal("setup: expected line and comp_a selected")
	}

	ed.PointerDown(Point{200, 25}, Modifiers{Additive: true}) // line leaves
	if len(ed.Selection().Lines()) != 0 || line.Selected {
		t.Error("additive re-click must deselect the line")
	}
	if !ed.Selection().IsComponentSelected(a) {
		t.Error("comp_a must stay selected")
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	ed, a, _ := editorFixture(t)

	ed.PointerDown(Point{50, 40}, Modifiers{})
	ed.PointerMove(Point{150, 40}, Modifiers{})
	ed.KeyDown("Escape")

	if a.Position != (Point{0, 0}) {
		t.Errorf("position after cancel = %v, want origin", a.Position)
	}
	if ed.Controller().State() != StateIdle {
		t.Error("cancel must return to idle")
	}
	if ed.History().CanUndo() {
		t.Error("cancelled drag must not create history")
	}
}

func TestSecondaryButtonCancels(t *testing.T) {
	ed, _, _ := editorFixture(t)

	ed.PointerDown(Point{100, 25}, Modifiers{})
	if ed.Controller().State() != StateDrawingLine {
		t.Fatal("setup: expected drawing state")
	}

	ed.PointerDown(Point{200, 60}, Modifiers{Secondary: true})
	if ed.Controller().State() != StateIdle {
		t.Error("secondary button must cancel the gesture")
	}
	if len(ed.Scene().Lines()) != 0 {
		t.Error("cancelled line draw must not attach a line")
	}
}

func TestResizeGesture(t *testing.T) {
	ed, a, _ := editorFixture(t)

	// Select, then grab the top-left handle.
	ed.PointerDown(Point{50, 40}, Modifiers{})
	ed.PointerUp(Point{50, 40}, Modifiers{})
	if !ed.Selection().IsComponentSelected(a) {
		t.Fatal("setup: component not selected")
	}

	ed.PointerDown(Point{0, 0}, Modifiers{})
	if ed.Controller().State() != StateResizingComponent {
		t.Fatalf("state = %v, want resizing", ed.Controller().State())
	}
	ed.PointerMove(Point{-50, -30}, Modifiers{})
	ed.PointerUp(Point{-50, -30}, Modifiers{})

	want := Rect{-50, -30, 150, 80}
	if a.Bounds() != want {
		t.Errorf("bounds after resize = %+v, want %+v", a.Bounds(), want)
	}
	if !ed.History().CanUndo() {
		t.Fatal("resize must produce an undo step")
	}

	ed.Undo()
	if a.Bounds() != (Rect{0, 0, 100, 50}) {
		t.Errorf("bounds after undo = %+v, want original", a.Bounds())
	}
}

func TestResizeBoundsMinimumClamp(t *testing.T) {
	orig := Rect{0, 0, 100, 50}

	// Dragging the bottom-right handle past the anchored corner clamps
	// to the minimum size instead of inverting through it.
	r := resizeBounds(orig, HandleBottomRight, Point{0.5, 0.2})
	if r.Width != MinComponentSize || r.Height != MinComponentSize {
		t.Errorf("clamped bounds = %+v, want %vx%v", r, MinComponentSize, MinComponentSize)
	}
	if r.X != 0 || r.Y != 0 {
		t.Errorf("clamped bounds moved the anchor: %+v", r)
	}
}

func TestRectSelectGesture(t *testing.T) {
	ed, a, b := editorFixture(t)

	ed.PointerDown(Point{-20, -20}, Modifiers{})
	if ed.Controller().State() != StateRectSelecting {
		t.Fatalf("state = %v, want rect selecting", ed.Controller().State())
	}

	ed.PointerMove(Point{250, 100}, Modifiers{})
	rect, active := ed.Controller().SelectionRect()
	if !active {
		t.Fatal("expected an active selection rect")
	}
	if rect.IsEmpty() {
		t.Error("selection rect must not be empty mid-gesture")
	}

	ed.PointerUp(Point{450, 100}, Modifiers{})
	if !ed.Selection().IsComponentSelected(a) || !ed.Selection().IsComponentSelected(b) {
		t.Error("rect covering both components must select both")
	}
	if ed.History().CanUndo() {
		t.Error("selection must not create history")
	}
}

func TestPanGesture(t *testing.T) {
	ed, _, _ := editorFixture(t)

	ed.PointerDown(Point{600, 300}, Modifiers{Pan: true})
	if ed.Controller().State() != StatePanning {
		t.Fatalf("state = %v, want panning", ed.Controller().State())
	}

	ed.PointerMove(Point{650, 280}, Modifiers{Pan: true})
	ed.PointerUp(Point{650, 280}, Modifiers{Pan: true})

	if got := ed.Viewport().PanOffset(); got != (Point{50, -20}) {
		t.Errorf("pan = %v, want (50, -20)", got)
	}
}

func TestWheelZoomsAtCursor(t *testing.T) {
	ed, _, _ := editorFixture(t)

	cursor := Point{400, 300}
	anchor := ed.Viewport().ScreenToWorld(cursor)

	ed.Wheel(cursor, 480) // factor 2^(480/480) = 2
	if ed.Viewport().Zoom() != 2 {
		t.Errorf("zoom = %v, want 2", ed.Viewport().Zoom())
	}
	if got := ed.Viewport().ScreenToWorld(cursor); !pointsAlmostEqual(got, anchor) {
		t.Errorf("anchor moved: %v -> %v", anchor, got)
	}

	ed.Wheel(cursor, -480) // back to 1
	if !almostEqual(ed.Viewport().Zoom(), 1) {
		t.Errorf("zoom = %v, want 1", ed.Viewport().Zoom())
	}
}

func TestAdditiveClickDoesNotStartDrag(t *testing.T) {
	ed, a, b := editorFixture(t)

	ed.PointerDown(Point{50, 40}, Modifiers{Additive: true})
	if ed.Controller().State() != StateIdle {
		t.Error("additive click must not start a drag")
	}
	ed.PointerDown(Point{350, 40}, Modifiers{Additive: true})

	if !ed.Selection().IsComponentSelected(a) || !ed.Selection().IsComponentSelected(b) {
		t.Error("additive clicks must accumulate selection")
	}
}
