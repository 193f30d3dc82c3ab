package engine

import "math"

// Path is the routed geometry of a connection line. For Straight and
// Orthogonal modes Points is a polyline; for Curved mode Points holds
// exactly the four cubic Bézier control points [p0, c1, c2, p3].
// The renderer strokes it and the hit tester measures distance to it —
// both consume the same geometry.
type Path struct {
	Mode   RoutingMode
	Points []Point
}

// IsCurve reports whether Points holds Bézier control points rather
// than polyline vertices.
func (p Path) IsCurve() bool {
	return p.Mode == RoutingCurved
}

// Length returns the total polyline length. For curves it returns the
// chord length between the endpoints (a lower bound).
func (p Path) Length() float64 {
	if len(p.Points) < 2 {
		return 0
	}
	if p.IsCurve() {
		return p.Points[0].DistanceTo(p.Points[3])
	}

	var total float64
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i-1].DistanceTo(p.Points[i])
	}
	return total
}

// Route computes the path between two world points for a routing mode.
func Route(start, end Point, mode RoutingMode) Path {
	switch mode {
	case RoutingOrthogonal:
		// Three segments through a vertical mid-line.
		midX := (start.X + end.X) / 2
		return Path{
			Mode: mode,
			Points: []Point{
				start,
				{midX, start.Y},
				{midX, end.Y},
				end,
			},
		}

	case RoutingCurved:
		// An S-curve that leaves each endpoint horizontally.
		c1 := Point{(2*start.X + end.X) / 3, start.Y}
		c2 := Point{(2*end.X + start.X) / 3, end.Y}
		return Path{
			Mode:   mode,
			Points: []Point{start, c1, c2, end},
		}

	default:
		return Path{
			Mode:   RoutingStraight,
			Points: []Point{start, end},
		}
	}
}

// CubicPoint evaluates a cubic Bézier at parameter t.
func CubicPoint(p0, c1, c2, p3 Point, t float64) Point {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*p0.X + b1*c1.X + b2*c2.X + b3*p3.X,
		Y: b0*p0.Y + b1*c1.Y + b2*c2.Y + b3*p3.Y,
	}
}

// Flatten converts the path to a polyline. Curves are sampled with the
// given number of subdivisions; polylines are returned as-is.
func (p Path) Flatten(samples int) []Point {
	if !p.IsCurve() || len(p.Points) != 4 {
		return p.Points
	}
	if samples < 1 {
		samples = 1
	}

	out := make([]Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		out = append(out, CubicPoint(p.Points[0], p.Points[1], p.Points[2], p.Points[3], t))
	}
	return out
}

// CurveSamples returns the adaptive subdivision count for hit-testing a
// curved path: it scales with the endpoint span in screen units and is
// clamped to [16, 128] so tight curves never degrade to a single chord.
func CurveSamples(start, end Point, zoom float64) int {
	span := start.DistanceTo(end)
	n := int(math.Ceil(span / (10 * zoom)))
	if n < 16 {
		n = 16
	}
	if n > 128 {
		n = 128
	}
	return n
}
