package engine

// SelectionManager tracks the selected components, lines, and ports as
// three independent sets. A single selection gesture puts entities into
// exactly one of the three sets.
type SelectionManager struct {
	components map[string]*Component
	lines      map[string]*ConnectionLine
	ports      map[*Port]bool

	onChange func()
}

// NewSelectionManager creates an empty selection.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{
		components: make(map[string]*Component),
		lines:      make(map[string]*ConnectionLine),
		ports:      make(map[*Port]bool),
	}
}

// SetOnChange registers a callback fired after every selection change.
func (m *SelectionManager) SetOnChange(fn func()) {
	m.onChange = fn
}

// SelectAt replaces the selection with the single topmost entity under
// the world point, or clears it if nothing is hit. Hit priority is
// port, then line, then component: ports and lines render above
// component bodies, so they win where they overlap.
func (m *SelectionManager) SelectAt(s *Scene, h *HitTester, p Point) {
	m.reset()

	if port := h.PortAt(s, p); port != nil {
		m.ports[port] = true
	} else if line := h.LineAt(s, p); line != nil {
		m.lines[line.ID] = line
		line.Selected = true
	} else if c := h.ComponentAt(s, p); c != nil {
		m.components[c.ID] = c
	}

	m.changed()
}

// SelectAdditive toggles membership of the entity under the world point
// without clearing the rest of the selection.
func (m *SelectionManager) SelectAdditive(s *Scene, h *HitTester, p Point) {
	if port := h.PortAt(s, p); port != nil {
		if m.ports[port] {
			delete(m.ports, port)
		} else {
			m.ports[port] = true
		}
		m.changed()
		return
	}

	if line := h.LineAt(s, p); line != nil {
		if _, ok := m.lines[line.ID]; ok {
			delete(m.lines, line.ID)
			line.Selected = false
		} else {
			m.lines[line.ID] = line
			line.Selected = true
		}
		m.changed()
		return
	}

	if c := h.ComponentAt(s, p); c != nil {
		if _, ok := m.components[c.ID]; ok {
			delete(m.components, c.ID)
		} else {
			m.components[c.ID] = c
		}
		m.changed()
	}
}

// SelectRect replaces the selection with every non-static component
// whose bounds intersect the world rect. Partial overlap counts.
func (m *SelectionManager) SelectRect(s *Scene, r Rect) {
	m.reset()

	for _, c := range s.Components() {
		if c.Static {
			continue
		}
		if c.Bounds().Intersects(r) {
			m.components[c.ID] = c
		}
	}

	m.changed()
}

// Clear empties all three sets.
func (m *SelectionManager) Clear() {
	m.reset()
	m.changed()
}

// Components returns the selected components.
func (m *SelectionManager) Components() []*Component {
	out := make([]*Component, 0, len(m.components))
	for _, c := range m.components {
		out = append(out, c)
	}
	return out
}

// Lines returns the selected lines.
func (m *SelectionManager) Lines() []*ConnectionLine {
	out := make([]*ConnectionLine, 0, len(m.lines))
	for _, l := range m.lines {
		out = append(out, l)
	}
	return out
}

// Ports returns the selected ports.
func (m *SelectionManager) Ports() []*Port {
	out := make([]*Port, 0, len(m.ports))
	for p := range m.ports {
		out = append(out, p)
	}
	return out
}

// IsComponentSelected reports whether the component is selected.
func (m *SelectionManager) IsComponentSelected(c *Component) bool {
	_, ok := m.components[c.ID]
	return ok
}

// IsEmpty reports whether nothing is selected.
func (m *SelectionManager) IsEmpty() bool {
	return len(m.components) == 0 && len(m.lines) == 0 && len(m.ports) == 0
}

// Drop removes an entity from the selection without firing a gesture,
// used when the entity is deleted from the scene.
func (m *SelectionManager) Drop(c *Component) {
	if c == nil {
		return
	}
	if _, ok := m.components[c.ID]; ok {
		delete(m.components, c.ID)
		m.changed()
	}
}

func (m *SelectionManager) reset() {
	for _, l := range m.lines {
		l.Selected = false
	}
	m.components = make(map[string]*Component)
	m.lines = make(map[string]*ConnectionLine)
	m.ports = make(map[*Port]bool)
}

func (m *SelectionManager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
