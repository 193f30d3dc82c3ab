package engine

// RoutingMode is the geometric strategy used to draw a connection line
// between two points.
type RoutingMode string

const (
	RoutingStraight   RoutingMode = "straight"
	RoutingOrthogonal RoutingMode = "orthogonal"
	RoutingCurved     RoutingMode = "curved"
)

// Multiplicity is a cardinality glyph drawn near a line endpoint.
type Multiplicity string

const (
	MultiplicityNone Multiplicity = ""
	MultiplicityOne  Multiplicity = "one"
	MultiplicityMany Multiplicity = "many"
)

// Endpoint is either a port or a free world point. A free endpoint
// (nil Port) only occurs on the in-progress preview line while the user
// is drawing a connection.
type Endpoint struct {
	Port  *Port
	Point Point
}

// Position returns the endpoint's world position: the port center when
// attached, the free point otherwise.
func (e Endpoint) Position() Point {
	if e.Port != nil {
		return e.Port.Center
	}
	return e.Point
}

// LineStyle carries the visual attributes of a connection line.
type LineStyle struct {
	ArrowStart  bool
	ArrowEnd    bool
	Dash        []float64
	StartMarker Multiplicity
	EndMarker   Multiplicity
	Label       string
	StrokeWidth float64
}

// ConnectionLine joins two endpoints with a routed path. A fully
// connected line has non-nil ports at both ends.
type ConnectionLine struct {
	ID       string
	Start    Endpoint
	End      Endpoint
	Routing  RoutingMode
	Style    LineStyle
	Selected bool
}

// Connected reports whether both endpoints are attached to ports.
func (l *ConnectionLine) Connected() bool {
	return l.Start.Port != nil && l.End.Port != nil
}

// Degenerate reports whether the line has no drawable extent or
// non-finite coordinates. Degenerate lines are skipped by the renderer
// and treated as "no hit" by the hit tester.
func (l *ConnectionLine) Degenerate() bool {
	a := l.Start.Position()
	b := l.End.Position()
	if !a.IsFinite() || !b.IsFinite() {
		return true
	}
	return a == b
}

// Touches reports whether either endpoint is owned by the component.
func (l *ConnectionLine) Touches(c *Component) bool {
	if l.Start.Port != nil && l.Start.Port.Owner() == c {
		return true
	}
	if l.End.Port != nil && l.End.Port.Owner() == c {
		return true
	}
	return false
}
