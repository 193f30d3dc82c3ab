package engine

import "testing"

// selectionFixture is a two-component scene with one connecting line:
// comp_a (0,0,100,50) out-port at (100,25), comp_b (300,0,100,50)
// in-port at (300,25), straight line between the ports.
func selectionFixture(t *testing.T) (*Scene, *HitTester, *SelectionManager, *Component, *Component, *ConnectionLine) {
	t.Helper()
	s := NewScene()
	v := NewViewport()
	h := NewHitTester(v)
	m := NewSelectionManager()

	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.sink", 300, 0, 100, 50, 1, 0)
	s.AddComponent(a)
	s.AddComponent(b)

	line, ok := s.Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight)
	if !ok {
		t.Fatal("fixture connect failed")
	}
	return s, h, m, a, b, line
}

func TestSelectAtPriorityPortOverLine(t *testing.T) {
	s, h, m, a, _, _ := selectionFixture(t)

	// The port center is also on the line; the port must win.
	m.SelectAt(s, h, Point{100, 25})

	ports := m.Ports()
	if len(ports) != 1 || ports[0] != a.OutputPort(0) {
		t.Errorf("ports = %v, want the out-port of comp_a", ports)
	}
	if len(m.Lines()) != 0 || len(m.Components()) != 0 {
		t.Error("port selection must not co-select lines or components")
	}
}

func TestSelectAtPriorityLineOverComponent(t *testing.T) {
	s, h, m, _, _, line := selectionFixture(t)

	m.SelectAt(s, h, Point{200, 25})

	lines := m.Lines()
	if len(lines) != 1 || lines[0] != line {
		t.Errorf("lines = %v, want line_ab", lines)
	}
	if !line.Selected {
		t.Error("selected line must carry the Selected flag")
	}
	if len(m.Components()) != 0 {
		t.Error("line selection must not co-select components")
	}
}

func TestSelectAtComponentBody(t *testing.T) {
	s, h, m, a, _, _ := selectionFixture(t)

	m.SelectAt(s, h, Point{50, 40})

	comps := m.Components()
	if len(comps) != 1 || comps[0] != a {
		t.Errorf("components = %v, want comp_a", comps)
	}
}

func TestSelectAtMissClears(t *testing.T) {
	s, h, m, a, _, line := selectionFixture(t)

	m.SelectAt(s, h, Point{50, 40})
	if !m.IsComponentSelected(a) {
		t.Fatal("setup selection failed")
	}

	m.SelectAt(s, h, Point{-500, -500})
	if !m.IsEmpty() {
		t.Error("miss must clear the selection")
	}
	if line.Selected {
		t.Error("clearing must reset line Selected flags")
	}
}

func TestSelectAdditiveToggles(t *testing.T) {
	s, h, m, a, b, _ := selectionFixture(t)

	m.SelectAdditive(s, h, Point{50, 40})  // comp_a on
	m.SelectAdditive(s, h, Point{350, 40}) // comp_b on
	if len(m.Components()) != 2 {
		t.Fatalf("expected 2 selected components, got %d", len(m.Components()))
	}

	m.SelectAdditive(s, h, Point{50, 40}) // comp_a off
	if m.IsComponentSelected(a) {
		t.Error("additive re-click must deselect comp_a")
	}
	if !m.IsComponentSelected(b) {
		t.Error("comp_b must stay selected")
	}
}

func TestSelectRectPartialOverlap(t *testing.T) {
	s, h, m, a, b, _ := selectionFixture(t)
	_ = h

	// Rect clips only the right edge of comp_a and misses comp_b.
	m.SelectRect(s, Rect{90, 0, 50, 50})
	if !m.IsComponentSelected(a) {
		t.Error("partially overlapped component must be selected")
	}
	if m.IsComponentSelected(b) {
		t.Error("non-overlapping component must not be selected")
	}

	// Rect covering both selects both.
	m.SelectRect(s, Rect{-10, -10, 500, 100})
	if len(m.Components()) != 2 {
		t.Errorf("expected 2 selected, got %d", len(m.Components()))
	}
}

func TestSelectRectSkipsStatic(t *testing.T) {
	s, _, m, _, _, _ := selectionFixture(t)

	overlay := NewComponent("comp_overlay", "overlay.legend", 0, 0, 1000, 1000, 0, 0)
	overlay.Static = true
	s.AddComponent(overlay)

	m.SelectRect(s, Rect{-10, -10, 2000, 2000})
	for _, c := range m.Components() {
		if c.Static {
			t.Error("rect selection must skip static components")
		}
	}
}

func TestSelectionDropOnDelete(t *testing.T) {
	s, h, m, a, _, _ := selectionFixture(t)

	m.SelectAt(s, h, Point{50, 40})
	if !m.IsComponentSelected(a) {
		t.Fatal("setup selection failed")
	}

	m.Drop(a)
	if m.IsComponentSelected(a) {
		t.Error("dropped component still selected")
	}
}

func TestSelectionOnChangeFires(t *testing.T) {
	s, h, m, _, _, _ := selectionFixture(t)

	calls := 0
	m.SetOnChange(func() { calls++ })

	m.SelectAt(s, h, Point{50, 40})
	m.Clear()
	if calls != 2 {
		t.Errorf("onChange fired %d times, want 2", calls)
	}
}
