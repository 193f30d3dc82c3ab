package engine

import "math"

// Handle identifies one of the four corner resize handles.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

// Default hit-testing budgets, expressed in screen pixels so the feel is
// identical at every zoom level.
const (
	defaultPixelTolerance    = 6.0
	defaultMinWorldTolerance = 0.5
	defaultArrowSize         = 10.0
	defaultHandleSize        = 8.0
	defaultPortRadius        = 6.0
)

// HitTester answers zoom-aware containment queries against the scene.
// All tolerances start as screen-pixel budgets and are divided by the
// current zoom, so hits feel consistent regardless of magnification.
type HitTester struct {
	viewport *Viewport

	PixelTolerance    float64
	MinWorldTolerance float64
	ArrowSize         float64
	HandleSize        float64
	PortRadius        float64
}

// NewHitTester creates a hit tester bound to a viewport.
func NewHitTester(v *Viewport) *HitTester {
	return &HitTester{
		viewport:          v,
		PixelTolerance:    defaultPixelTolerance,
		MinWorldTolerance: defaultMinWorldTolerance,
		ArrowSize:         defaultArrowSize,
		HandleSize:        defaultHandleSize,
		PortRadius:        defaultPortRadius,
	}
}

// lineTolerance converts the screen-pixel budget to world units and
// widens it by half the stroke width (also zoom-compensated).
func (h *HitTester) lineTolerance(strokeWidth float64) float64 {
	zoom := h.viewport.Zoom()
	tol := max(h.MinWorldTolerance, h.PixelTolerance/zoom)
	return tol + strokeWidth/2/zoom
}

// HitLine reports whether a world point lies within tolerance of a
// line's routed path. Degenerate lines never hit.
func (h *HitTester) HitLine(l *ConnectionLine, p Point) bool {
	if l == nil || l.Degenerate() || !p.IsFinite() {
		return false
	}

	start := l.Start.Position()
	end := l.End.Position()
	path := Route(start, end, l.Routing)
	tol := h.lineTolerance(l.Style.StrokeWidth)

	var pts []Point
	if path.IsCurve() {
		// Adaptive sampling: a single global chord check misses tight
		// curves, so test distance to each sampled sub-segment.
		pts = path.Flatten(CurveSamples(start, end, h.viewport.Zoom()))
	} else {
		pts = path.Points
	}

	for i := 1; i < len(pts); i++ {
		if PointSegmentDistance(p, pts[i-1], pts[i]) <= tol {
			return true
		}
	}
	return false
}

// HitArrow reports whether a world point falls inside the bounding box
// of an arrowhead at tip, pointing away from tail. The arrowhead wings
// are the tip-to-tail direction rotated ±30° at ArrowSize/zoom.
func (h *HitTester) HitArrow(tip, tail, p Point) bool {
	if !tip.IsFinite() || !tail.IsFinite() || tip == tail {
		return false
	}

	size := h.ArrowSize / h.viewport.Zoom()
	left, right := arrowWings(tip, tail, size)

	box := RectFromPoints(tip, left).Union(RectFromPoints(tip, right))
	return box.Contains(p)
}

// arrowWings returns the two wing points of an arrowhead: the unit
// vector from tip toward tail, rotated ±30° and scaled to size.
func arrowWings(tip, tail Point, size float64) (Point, Point) {
	angle := math.Atan2(tail.Y-tip.Y, tail.X-tip.X)
	const wing = math.Pi / 6
	left := Point{
		X: tip.X + size*math.Cos(angle+wing),
		Y: tip.Y + size*math.Sin(angle+wing),
	}
	right := Point{
		X: tip.X + size*math.Cos(angle-wing),
		Y: tip.Y + size*math.Sin(angle-wing),
	}
	return left, right
}

// HitPort reports whether a world point is within the port's hit radius.
func (h *HitTester) HitPort(port *Port, p Point) bool {
	if port == nil || !p.IsFinite() {
		return false
	}
	radius := max(h.MinWorldTolerance, h.PortRadius/h.viewport.Zoom())
	return port.Center.DistanceTo(p) <= radius
}

// HandleAt returns which corner resize handle of the component contains
// the world point, or HandleNone. Each handle is a square of fixed
// screen size converted to world units.
func (h *HitTester) HandleAt(c *Component, p Point) Handle {
	if c == nil || !p.IsFinite() {
		return HandleNone
	}

	half := h.HandleSize / h.viewport.Zoom() / 2
	b := c.Bounds()
	corners := []struct {
		handle Handle
		center Point
	}{
		{HandleTopLeft, Point{b.X, b.Y}},
		{HandleTopRight, Point{b.X + b.Width, b.Y}},
		{HandleBottomLeft, Point{b.X, b.Y + b.Height}},
		{HandleBottomRight, Point{b.X + b.Width, b.Y + b.Height}},
	}

	for _, corner := range corners {
		box := Rect{corner.center.X - half, corner.center.Y - half, 2 * half, 2 * half}
		if box.Contains(p) {
			return corner.handle
		}
	}
	return HandleNone
}

// ComponentAt returns the topmost non-static component whose bounds
// contain the world point. Components are tested front to back, so the
// last added wins on overlap.
func (h *HitTester) ComponentAt(s *Scene, p Point) *Component {
	if !p.IsFinite() {
		return nil
	}
	components := s.Components()
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if c.Static {
			continue
		}
		if c.Bounds().Contains(p) {
			return c
		}
	}
	return nil
}

// LineAt returns the topmost line hit by the world point, or nil.
func (h *HitTester) LineAt(s *Scene, p Point) *ConnectionLine {
	lines := s.Lines()
	for i := len(lines) - 1; i >= 0; i-- {
		if h.HitLine(lines[i], p) {
			return lines[i]
		}
	}
	return nil
}

// PortAt returns the first port within hit radius of the world point,
// searching components front to back, or nil.
func (h *HitTester) PortAt(s *Scene, p Point) *Port {
	components := s.Components()
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if c.Static {
			continue
		}
		c.LayoutPorts()
		for _, port := range c.Inputs {
			if h.HitPort(port, p) {
				return port
			}
		}
		for _, port := range c.Outputs {
			if h.HitPort(port, p) {
				return port
			}
		}
	}
	return nil
}
