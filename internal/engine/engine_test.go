package engine

import "testing"

func TestEditorHitTest(t *testing.T) {
	ed, a, b := editorFixture(t)
	if _, ok := ed.Scene().Connect("line_ab", a.OutputPort(0), b.InputPort(0), RoutingStraight); !ok {
		t.Fatal("fixture connect failed")
	}

	if got := ed.HitTest(Point{200, 25}); got != "line_ab" {
		t.Errorf("hit at line midpoint = %q, want line_ab", got)
	}
	// A port center sits on the line; ports have no id, the line wins.
	if got := ed.HitTest(Point{100, 25}); got != "line_ab" {
		t.Errorf("hit at port center = %q, want line_ab", got)
	}
	if got := ed.HitTest(Point{50, 40}); got != "comp_a" {
		t.Errorf("hit at component body = %q, want comp_a", got)
	}
	if got := ed.HitTest(Point{600, 600}); got != "" {
		t.Errorf("hit on empty canvas = %q, want empty", got)
	}
}
