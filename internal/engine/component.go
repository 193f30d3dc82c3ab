package engine

import "encoding/json"

// PortDirection tells whether a port accepts or emits connections.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// Port is an attachment point on a component where a connection line may
// originate or terminate. Its center is kept in world space and is
// recomputed whenever the owning component's bounds change.
type Port struct {
	Index     int
	Direction PortDirection
	Center    Point

	// Available is true until the port is consumed by a connection, in
	// component kinds that enforce single-use ports.
	Available bool

	owner *Component
}

// Owner returns the component this port belongs to. The reference is for
// lookup only; the component owns the port, not the other way around.
func (p *Port) Owner() *Component {
	return p.owner
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// DrawFunc produces the body geometry of a component in component-local
// coordinates (origin at the component's top-left corner). Node families
// supply these; the engine only decides where and when to invoke them.
type DrawFunc func(c *Component) []PathCommand

// LayoutPortsFunc positions a component's ports in world space against
// its current bounds.
type LayoutPortsFunc func(c *Component)

// Component is a positioned, resizable node in the scene.
type Component struct {
	ID       string
	Kind     string
	Position Point
	Width    float64
	Height   float64

	// Static components are drawn in screen space, ignoring the viewport
	// transform. They act as overlays and are excluded from world-space
	// hit testing.
	Static bool

	// ExclusivePorts makes each port single-use: a second connection to
	// an already consumed port is rejected.
	ExclusivePorts bool

	Inputs  []*Port
	Outputs []*Port

	// Props is an opaque, family-specific property bag.
	Props json.RawMessage

	draw        DrawFunc
	layoutPorts LayoutPortsFunc
	portsDirty  bool
}

// MinComponentSize is the smallest width/height a resize or load may
// produce. Smaller values are clamped, never inverted.
const MinComponentSize = 1.0

// NewComponent creates a component with the given bounds and port counts.
// Draw and port-layout callbacks default to a plain rectangle body and an
// even spread of inputs on the left edge / outputs on the right edge.
func NewComponent(id, kind string, x, y, w, h float64, inputs, outputs int) *Component {
	c := &Component{
		ID:       id,
		Kind:     kind,
		Position: Point{x, y},
		Width:    max(w, MinComponentSize),
		Height:   max(h, MinComponentSize),
	}

	for i := 0; i < inputs; i++ {
		c.Inputs = append(c.Inputs, &Port{Index: i, Direction: PortIn, Available: true, owner: c})
	}
	for i := 0; i < outputs; i++ {
		c.Outputs = append(c.Outputs, &Port{Index: i, Direction: PortOut, Available: true, owner: c})
	}

	c.portsDirty = true
	return c
}

// SetDraw replaces the component's draw callback.
func (c *Component) SetDraw(fn DrawFunc) {
	c.draw = fn
}

// SetPortLayout replaces the component's port-layout callback and marks
// ports dirty.
func (c *Component) SetPortLayout(fn LayoutPortsFunc) {
	c.layoutPorts = fn
	c.portsDirty = true
}

// Bounds returns the component's axis-aligned bounds.
func (c *Component) Bounds() Rect {
	return Rect{c.Position.X, c.Position.Y, c.Width, c.Height}
}

// SetPosition moves the component and marks its ports dirty.
func (c *Component) SetPosition(p Point) {
	c.Position = p
	c.portsDirty = true
}

// SetBounds replaces position and size, clamping to MinComponentSize,
// and marks the ports dirty.
func (c *Component) SetBounds(r Rect) {
	c.Position = Point{r.X, r.Y}
	c.Width = max(r.Width, MinComponentSize)
	c.Height = max(r.Height, MinComponentSize)
	c.portsDirty = true
}

// MarkPortsDirty forces a port re-layout on the next LayoutPorts call.
func (c *Component) MarkPortsDirty() {
	c.portsDirty = true
}

// LayoutPorts recomputes port centers if they are dirty. Idempotent and
// side-effect-free on all geometry other than the component's own ports.
func (c *Component) LayoutPorts() {
	if !c.portsDirty {
		return
	}

	if c.layoutPorts != nil {
		c.layoutPorts(c)
	} else {
		defaultPortLayout(c)
	}
	c.portsDirty = false
}

// defaultPortLayout spreads inputs evenly along the left edge and
// outputs along the right edge.
func defaultPortLayout(c *Component) {
	spread := func(ports []*Port, x float64) {
		n := len(ports)
		for i, p := range ports {
			p.Center = Point{
				X: x,
				Y: c.Position.Y + c.Height*(float64(i)+1)/(float64(n)+1),
			}
		}
	}
	spread(c.Inputs, c.Position.X)
	spread(c.Outputs, c.Position.X+c.Width)
}

// Paths returns the component body geometry in local coordinates, falling
// back to a plain rectangle when no family draw callback is registered.
func (c *Component) Paths() []PathCommand {
	if c.draw != nil {
		return c.draw(c)
	}
	return []PathCommand{
		{"M", 0.0, 0.0},
		{"L", c.Width, 0.0},
		{"L", c.Width, c.Height},
		{"L", 0.0, c.Height},
		{"Z"},
	}
}

// InputPort returns the input port at index, or nil.
func (c *Component) InputPort(index int) *Port {
	if index < 0 || index >= len(c.Inputs) {
		return nil
	}
	return c.Inputs[index]
}

// OutputPort returns the output port at index, or nil.
func (c *Component) OutputPort(index int) *Port {
	if index < 0 || index >= len(c.Outputs) {
		return nil
	}
	return c.Outputs[index]
}
