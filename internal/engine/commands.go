package engine

// Concrete history commands. Each captures enough state to reverse the
// mutation. Gesture commands (move/resize) are created on pointer-up so
// one drag is one undo step; their Execute is idempotent because the
// gesture already left the scene in the target state.

// MoveCommand repositions a component.
type MoveCommand struct {
	Component *Component
	From      Point
	To        Point
}

func (c *MoveCommand) Execute() {
	c.Component.SetPosition(c.To)
	c.Component.LayoutPorts()
}

func (c *MoveCommand) Undo() {
	c.Component.SetPosition(c.From)
	c.Component.LayoutPorts()
}

// ResizeCommand changes a component's bounds.
type ResizeCommand struct {
	Component *Component
	From      Rect
	To        Rect
}

func (c *ResizeCommand) Execute() {
	c.Component.SetBounds(c.To)
	c.Component.LayoutPorts()
}

func (c *ResizeCommand) Undo() {
	c.Component.SetBounds(c.From)
	c.Component.LayoutPorts()
}

// AddComponentCommand adds a component to the scene.
type AddComponentCommand struct {
	Scene     *Scene
	Component *Component
}

func (c *AddComponentCommand) Execute() {
	c.Scene.AddComponent(c.Component)
}

func (c *AddComponentCommand) Undo() {
	c.Scene.RemoveComponent(c.Component)
}

// RemoveComponentCommand removes a component together with its attached
// lines, remembering the z-index and lines so undo restores both.
type RemoveComponentCommand struct {
	Scene     *Scene
	Component *Component

	index    int
	detached []*ConnectionLine
}

func (c *RemoveComponentCommand) Execute() {
	c.index, c.detached = c.Scene.RemoveComponent(c.Component)
}

func (c *RemoveComponentCommand) Undo() {
	c.Scene.InsertComponentAt(c.Component, c.index)
	for _, l := range c.detached {
		c.Scene.AttachLine(l)
	}
}

// ConnectCommand attaches a pre-built connection line.
type ConnectCommand struct {
	Scene *Scene
	Line  *ConnectionLine
}

func (c *ConnectCommand) Execute() {
	c.Scene.AttachLine(c.Line)
}

func (c *ConnectCommand) Undo() {
	c.Scene.DetachLine(c.Line)
}

// DisconnectCommand detaches an existing connection line.
type DisconnectCommand struct {
	Scene *Scene
	Line  *ConnectionLine
}

func (c *DisconnectCommand) Execute() {
	c.Scene.DetachLine(c.Line)
}

func (c *DisconnectCommand) Undo() {
	c.Scene.AttachLine(c.Line)
}
