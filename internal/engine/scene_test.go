package engine

import "testing"

func TestSceneZOrderIsInsertionOrder(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 10, 10, 0, 0)
	b := NewComponent("comp_b", "etl.source", 0, 0, 10, 10, 0, 0)
	s.AddComponent(a)
	s.AddComponent(b)

	got := s.Components()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("unexpected z-order: %v", got)
	}
}

func TestSceneAddDuplicateIgnored(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 10, 10, 0, 0)
	s.AddComponent(a)
	s.AddComponent(a)
	if len(s.Components()) != 1 {
		t.Errorf("duplicate add changed count to %d", len(s.Components()))
	}
}

func TestSceneInsertComponentAtRestoresZIndex(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 10, 10, 0, 0)
	b := NewComponent("comp_b", "etl.source", 0, 0, 10, 10, 0, 0)
	c := NewComponent("comp_c", "etl.source", 0, 0, 10, 10, 0, 0)
	s.AddComponent(a)
	s.AddComponent(b)
	s.AddComponent(c)

	index, _ := s.RemoveComponent(b)
	if index != 1 {
		t.Fatalf("removed z-index = %d, want 1", index)
	}

	s.InsertComponentAt(b, index)
	got := s.Components()
	if got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("z-order not restored: %v", got)
	}
}

func TestSceneRemoveCascadesLines(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.transform", 200, 0, 100, 50, 1, 1)
	c := NewComponent("comp_c", "etl.sink", 400, 0, 100, 50, 1, 0)
	s.AddComponent(a)
	s.AddComponent(b)
	s.AddComponent(c)

	if _, ok := s.Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingCurved); !ok {
		t.Fatal("connect line_ab failed")
	}
	if _, ok := s.Connect("line_bc", b.OutputPort(0), c.InputPort(0), RoutingCurved); !ok {
		t.Fatal("connect line_bc failed")
	}

	_, detached := s.RemoveComponent(b)
	if len(detached) != 2 {
		t.Errorf("detached %d lines, want 2", len(detached))
	}
	if len(s.Lines()) != 0 {
		t.Errorf("%d lines remain in scene, want 0", len(s.Lines()))
	}
	if s.LineByID("line_ab") != nil || s.LineByID("line_bc") != nil {
		t.Error("removed lines still resolvable by id")
	}
}

func TestBuildConnectionRejectsBadPairs(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 1, 1)
	b := NewComponent("comp_b", "etl.sink", 200, 0, 100, 50, 1, 1)
	s.AddComponent(a)
	s.AddComponent(b)

	if _, ok := s.BuildConnection("l1", a.OutputPort(0), b.OutputPort(0), RoutingStraight); ok {
		t.Error("out->out pair must be rejected")
	}
	if _, ok := s.BuildConnection("l2", a.InputPort(0), b.InputPort(0), RoutingStraight); ok {
		t.Error("in->in pair must be rejected")
	}
	if _, ok := s.BuildConnection("l3", a.OutputPort(0), a.InputPort(0), RoutingStraight); ok {
		t.Error("self-connection must be rejected")
	}
	if _, ok := s.BuildConnection("l4", nil, b.InputPort(0), RoutingStraight); ok {
		t.Error("nil port must be rejected")
	}
}

func TestExclusivePortsConsumeOnAttach(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "flow.gate", 0, 0, 100, 50, 0, 1)
	a.ExclusivePorts = true
	b := NewComponent("comp_b", "flow.gate", 200, 0, 100, 50, 1, 0)
	b.ExclusivePorts = true
	c := NewComponent("comp_c", "flow.gate", 200, 100, 100, 50, 1, 0)
	c.ExclusivePorts = true
	s.AddComponent(a)
	s.AddComponent(b)
	s.AddComponent(c)

	line, ok := s.Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight)
	if !ok {
		t.Fatal("first connect failed")
	}

	// The out-port is consumed: a second line from it must be rejected.
	if _, ok := s.Connect("line_ac", a.OutputPort(0), c.InputPort(0), RoutingStraight); ok {
		t.Error("consumed exclusive port accepted a second line")
	}

	// Detaching frees the ports again.
	s.DetachLine(line)
	if _, ok := s.Connect("line_ac", a.OutputPort(0), c.InputPort(0), RoutingStraight); !ok {
		t.Error("freed exclusive port rejected a new line")
	}
}

func TestNonExclusivePortsAcceptFanOut(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.sink", 200, 0, 100, 50, 1, 0)
	c := NewComponent("comp_c", "etl.sink", 200, 100, 100, 50, 1, 0)
	s.AddComponent(a)
	s.AddComponent(b)
	s.AddComponent(c)

	if _, ok := s.Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight); !ok {
		t.Fatal("first connect failed")
	}
	if _, ok := s.Connect("line_ac", a.OutputPort(0), c.InputPort(0), RoutingStraight); !ok {
		t.Error("non-exclusive port rejected fan-out")
	}
}

func TestSceneClear(t *testing.T) {
	s := NewScene()
	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.sink", 200, 0, 100, 50, 1, 0)
	s.AddComponent(a)
	s.AddComponent(b)
	s.Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight)

	s.Clear()
	if len(s.Components()) != 0 || len(s.Lines()) != 0 {
		t.Error("clear left entities behind")
	}
	if s.ComponentByID("comp_a") != nil {
		t.Error("clear left id index behind")
	}
}

func TestSetBoundsClampsToMinimumSize(t *testing.T) {
	c := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 0)
	c.SetBounds(Rect{10, 10, 0.2, -5})
	b := c.Bounds()
	if b.Width < MinComponentSize || b.Height < MinComponentSize {
		t.Errorf("bounds %+v below minimum size", b)
	}
}
