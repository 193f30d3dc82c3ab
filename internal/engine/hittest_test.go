package engine

import (
	"math"
	"testing"
)

func straightLine(start, end Point) *ConnectionLine {
	return &ConnectionLine{
		ID:      "line_test",
		Start:   Endpoint{Point: start},
		End:     Endpoint{Point: end},
		Routing: RoutingStraight,
		Style:   LineStyle{StrokeWidth: 2},
	}
}

func TestHitLineToleranceAtZoom1(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	l := straightLine(Point{0, 0}, Point{100, 0})

	// tol = max(0.5, 6/1) + 2/2/1 = 7
	if !h.HitLine(l, Point{50, 6.9}) {
		t.Error("point inside tolerance must hit")
	}
	if h.HitLine(l, Point{50, 7.1}) {
		t.Error("point outside tolerance must not hit")
	}
}

func TestHitLineToleranceShrinksWithZoom(t *testing.T) {
	v := NewViewport()
	v.SetZoom(10)
	h := NewHitTester(v)
	l := straightLine(Point{0, 0}, Point{100, 0})

	// tol = max(0.5, 0.6) + 0.1 = 0.7 world units
	if !h.HitLine(l, Point{50, 0.65}) {
		t.Error("point inside zoomed tolerance must hit")
	}
	if h.HitLine(l, Point{50, 0.75}) {
		t.Error("point outside zoomed tolerance must not hit")
	}
}

func TestHitLineMinWorldToleranceFloor(t *testing.T) {
	v := NewViewport()
	v.SetZoom(MaxZoom)
	h := NewHitTester(v)
	l := straightLine(Point{0, 0}, Point{100, 0})
	l.Style.StrokeWidth = 0 // falls back to tolerance only

	// At zoom 20 the pixel budget is 0.3, below the 0.5 world floor.
	if !h.HitLine(l, Point{50, 0.45}) {
		t.Error("point inside the world-unit floor must hit")
	}
}

func TestHitLineCurvedFollowsCurveNotChord(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	l := &ConnectionLine{
		ID:      "line_curve",
		Start:   Endpoint{Point: Point{0, 0}},
		End:     Endpoint{Point: Point{400, 200}},
		Routing: RoutingCurved,
		Style:   LineStyle{StrokeWidth: 2},
	}

	// The curve at t=0.25 passes through (100, 31.25); the straight chord
	// at x=100 is at y=50, well outside tolerance.
	onCurve := CubicPoint(Point{0, 0}, Point{400.0 / 3, 0}, Point{800.0 / 3, 200}, Point{400, 200}, 0.25)
	if !h.HitLine(l, onCurve) {
		t.Errorf("point on curve %v must hit", onCurve)
	}
	if h.HitLine(l, Point{100, 50}) {
		t.Error("point on chord but off curve must not hit")
	}
}

func TestHitLineDegenerate(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)

	zero := straightLine(Point{50, 50}, Point{50, 50})
	if h.HitLine(zero, Point{50, 50}) {
		t.Error("zero-length line must never hit")
	}

	nan := straightLine(Point{math.NaN(), 0}, Point{100, 0})
	if h.HitLine(nan, Point{50, 0}) {
		t.Error("line with NaN endpoint must never hit")
	}

	ok := straightLine(Point{0, 0}, Point{100, 0})
	if h.HitLine(ok, Point{math.NaN(), math.NaN()}) {
		t.Error("NaN query point must never hit")
	}
}

func TestHitArrow(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)

	tip := Point{100, 100}
	tail := Point{0, 100} // arrow points right, wings extend left

	if !h.HitArrow(tip, tail, Point{95, 100}) {
		t.Error("point inside arrowhead box must hit")
	}
	if !h.HitArrow(tip, tail, tip) {
		t.Error("tip itself must hit")
	}
	if h.HitArrow(tip, tail, Point{115, 100}) {
		t.Error("point beyond the tip must not hit")
	}
	if h.HitArrow(tip, tip, Point{100, 100}) {
		t.Error("degenerate arrow (tip == tail) must not hit")
	}
}

func TestHitArrowScalesWithZoom(t *testing.T) {
	v := NewViewport()
	v.SetZoom(10)
	h := NewHitTester(v)

	tip := Point{100, 100}
	tail := Point{0, 100}

	// Arrow box extends 10/10 * cos(30°) ≈ 0.866 world units behind tip.
	if !h.HitArrow(tip, tail, Point{99.5, 100}) {
		t.Error("point inside zoomed arrowhead must hit")
	}
	if h.HitArrow(tip, tail, Point{98, 100}) {
		t.Error("point outside zoomed arrowhead must not hit")
	}
}

func TestHitPortRadius(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)

	c := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	c.LayoutPorts()
	port := c.OutputPort(0) // at (100, 25)

	if !h.HitPort(port, Point{100, 25}) {
		t.Error("port center must hit")
	}
	if !h.HitPort(port, Point{105.9, 25}) {
		t.Error("point inside the 6px radius must hit")
	}
	if h.HitPort(port, Point{106.5, 25}) {
		t.Error("point outside the 6px radius must not hit")
	}
}

func TestHandleAtCorners(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)

	c := NewComponent("comp_a", "etl.source", 10, 20, 100, 50, 0, 0)

	cases := []struct {
		name string
		p    Point
		want Handle
	}{
		{"top-left", Point{10, 20}, HandleTopLeft},
		{"top-right", Point{110, 20}, HandleTopRight},
		{"bottom-left", Point{10, 70}, HandleBottomLeft},
		{"bottom-right", Point{110, 70}, HandleBottomRight},
		{"center", Point{60, 45}, HandleNone},
		{"near corner but outside", Point{10, 25}, HandleNone},
	}
	for _, tc := range cases {
		if got := h.HandleAt(c, tc.p); got != tc.want {
			t.Errorf("%s: HandleAt(%v) = %v, want %v", tc.name, tc.p, got, tc.want)
		}
	}
}

func TestComponentAtTopmostWins(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	s := NewScene()

	bottom := NewComponent("comp_bottom", "etl.source", 0, 0, 100, 100, 0, 0)
	top := NewComponent("comp_top", "etl.source", 50, 50, 100, 100, 0, 0)
	s.AddComponent(bottom)
	s.AddComponent(top)

	if got := h.ComponentAt(s, Point{75, 75}); got != top {
		t.Errorf("overlap hit = %v, want the later-added component", got)
	}
	if got := h.ComponentAt(s, Point{25, 25}); got != bottom {
		t.Errorf("non-overlap hit = %v, want the bottom component", got)
	}
	if got := h.ComponentAt(s, Point{500, 500}); got != nil {
		t.Errorf("miss returned %v, want nil", got)
	}
}

func TestComponentAtSkipsStatic(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	s := NewScene()

	c := NewComponent("comp_overlay", "overlay.legend", 0, 0, 100, 100, 0, 0)
	c.Static = true
	s.AddComponent(c)

	if got := h.ComponentAt(s, Point{50, 50}); got != nil {
		t.Errorf("static component was hit: %v", got)
	}
}

func TestLineAt(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	s := NewScene()

	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 0, 1)
	b := NewComponent("comp_b", "etl.sink", 300, 0, 100, 50, 1, 0)
	s.AddComponent(a)
	s.AddComponent(b)

	line, ok := s.Connect("line_1", a.OutputPort(0), b.InputPort(0), RoutingStraight)
	if !ok {
		t.Fatal("connect line_1 failed")
	}

	// Straight run from (100, 25) to (300, 25).
	if got := h.LineAt(s, Point{200, 25}); got != line {
		t.Errorf("midpoint hit = %v, want line_1", got)
	}
	if got := h.LineAt(s, Point{200, 50}); got != nil {
		t.Errorf("far point hit = %v, want nil", got)
	}
}

func TestPortAtSearchesFrontToBack(t *testing.T) {
	v := NewViewport()
	h := NewHitTester(v)
	s := NewScene()

	a := NewComponent("comp_a", "etl.source", 0, 0, 100, 50, 1, 1)
	s.AddComponent(a)

	if got := h.PortAt(s, Point{100, 25}); got != a.OutputPort(0) {
		t.Errorf("PortAt output edge = %v, want the output port", got)
	}
	if got := h.PortAt(s, Point{0, 25}); got != a.InputPort(0) {
		t.Errorf("PortAt input edge = %v, want the input port", got)
	}
	if got := h.PortAt(s, Point{50, 25}); got != nil {
		t.Errorf("PortAt body = %v, want nil", got)
	}
}
