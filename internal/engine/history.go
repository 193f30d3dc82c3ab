package engine

// Command is a reversible unit of scene mutation. The history never
// inspects a command's internals; it only calls Execute and Undo.
type Command interface {
	Execute()
	Undo()
}

// History is the undo/redo stack. Executing a new command discards any
// divergent redo future.
type History struct {
	undo []Command
	redo []Command

	onChange func(canUndo, canRedo bool)
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// SetOnChange registers a callback fired whenever undo/redo availability
// may have changed.
func (h *History) SetOnChange(fn func(canUndo, canRedo bool)) {
	h.onChange = fn
}

// Execute runs the command, pushes it onto the undo stack, and clears
// the redo stack.
func (h *History) Execute(cmd Command) {
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	h.redo = nil
	h.changed()
}

// Undo reverses the most recent command. No-op when the stack is empty.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	h.changed()
	return true
}

// Redo re-applies the most recently undone command. No-op when the
// stack is empty.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	h.changed()
	return true
}

// Clear empties both stacks. Used on document load/reset.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.changed()
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

func (h *History) changed() {
	if h.onChange != nil {
		h.onChange(h.CanUndo(), h.CanRedo())
	}
}
