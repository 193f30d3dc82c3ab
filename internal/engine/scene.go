package engine

// Scene holds the set of components and connection lines. Component
// order is insertion order and doubles as the z-order: the last added
// component is drawn last and wins hit tests on overlap.
type Scene struct {
	components []*Component
	byID       map[string]*Component
	lines      []*ConnectionLine
	linesByID  map[string]*ConnectionLine
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		byID:      make(map[string]*Component),
		linesByID: make(map[string]*ConnectionLine),
	}
}

// Components returns the components in z-order (back to front).
func (s *Scene) Components() []*Component {
	return s.components
}

// Lines returns all connection lines in insertion order.
func (s *Scene) Lines() []*ConnectionLine {
	return s.lines
}

// ComponentByID looks up a component, or nil.
func (s *Scene) ComponentByID(id string) *Component {
	return s.byID[id]
}

// LineByID looks up a line, or nil.
func (s *Scene) LineByID(id string) *ConnectionLine {
	return s.linesByID[id]
}

// AddComponent appends a component at the top of the z-order and lays
// out its ports.
func (s *Scene) AddComponent(c *Component) {
	if _, exists := s.byID[c.ID]; exists {
		return
	}
	s.components = append(s.components, c)
	s.byID[c.ID] = c
	c.LayoutPorts()
}

// InsertComponentAt puts a component back at a specific z-index. Used
// when undoing a removal so the original stacking is restored.
func (s *Scene) InsertComponentAt(c *Component, index int) {
	if _, exists := s.byID[c.ID]; exists {
		return
	}
	if index < 0 || index > len(s.components) {
		index = len(s.components)
	}
	s.components = append(s.components, nil)
	copy(s.components[index+1:], s.components[index:])
	s.components[index] = c
	s.byID[c.ID] = c
	c.LayoutPorts()
}

// RemoveComponent detaches a component and every line touching one of
// its ports. It returns the component's previous z-index and the
// detached lines so the operation can be reversed.
func (s *Scene) RemoveComponent(c *Component) (index int, detached []*ConnectionLine) {
	index = -1
	for i, existing := range s.components {
		if existing == c {
			index = i
			break
		}
	}
	if index == -1 {
		return -1, nil
	}

	for _, l := range s.lines {
		if l.Touches(c) {
			detached = append(detached, l)
		}
	}
	for _, l := range detached {
		s.DetachLine(l)
	}

	s.components = append(s.components[:index], s.components[index+1:]...)
	delete(s.byID, c.ID)
	return index, detached
}

// BuildConnection validates a port pair and constructs a line between
// them without attaching it to the scene. It rejects same-direction
// pairs, self-connections, and consumed exclusive ports — silently, via
// the boolean, never an error.
func (s *Scene) BuildConnection(id string, out, in *Port, mode RoutingMode) (*ConnectionLine, bool) {
	if out == nil || in == nil {
		return nil, false
	}
	if out.Direction != PortOut || in.Direction != PortIn {
		return nil, false
	}
	if out.Owner() == in.Owner() {
		return nil, false
	}
	if !portFree(out) || !portFree(in) {
		return nil, false
	}

	return &ConnectionLine{
		ID:      id,
		Start:   Endpoint{Port: out},
		End:     Endpoint{Port: in},
		Routing: mode,
		Style:   LineStyle{ArrowEnd: true, StrokeWidth: 2},
	}, true
}

// AttachLine adds a built line to the scene and consumes its ports.
func (s *Scene) AttachLine(l *ConnectionLine) {
	if _, exists := s.linesByID[l.ID]; exists {
		return
	}
	s.lines = append(s.lines, l)
	s.linesByID[l.ID] = l
	if l.Start.Port != nil {
		l.Start.Port.Available = false
	}
	if l.End.Port != nil {
		l.End.Port.Available = false
	}
}

// DetachLine removes a line from the scene and frees its ports.
func (s *Scene) DetachLine(l *ConnectionLine) {
	if _, exists := s.linesByID[l.ID]; !exists {
		return
	}
	for i, existing := range s.lines {
		if existing == l {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	delete(s.linesByID, l.ID)
	if l.Start.Port != nil {
		l.Start.Port.Available = true
	}
	if l.End.Port != nil {
		l.End.Port.Available = true
	}
}

// Connect builds and attaches a line in one step, bypassing history.
func (s *Scene) Connect(id string, out, in *Port, mode RoutingMode) (*ConnectionLine, bool) {
	l, ok := s.BuildConnection(id, out, in, mode)
	if !ok {
		return nil, false
	}
	s.AttachLine(l)
	return l, true
}

// Clear empties the scene.
func (s *Scene) Clear() {
	s.components = nil
	s.lines = nil
	s.byID = make(map[string]*Component)
	s.linesByID = make(map[string]*ConnectionLine)
}

// portFree reports whether a port can accept another connection. Ports
// on components without exclusive ports are always free.
func portFree(p *Port) bool {
	if p.Owner() != nil && p.Owner().ExclusivePorts {
		return p.Available
	}
	return true
}
