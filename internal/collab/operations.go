package collab

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gridline/gridline/backend-go/internal/document"
)

// DocumentState holds the authoritative diagram state for a room
type DocumentState struct {
	mu        sync.RWMutex
	doc       *document.Document
	serverSeq int64
	opLog     []Operation // Operation history for persistence
}

// NewDocumentState creates a new document state from an initial document
func NewDocumentState(doc *document.Document) *DocumentState {
	return &DocumentState{
		doc:       doc,
		serverSeq: 0,
		opLog:     make([]Operation, 0),
	}
}

// GetDocument returns the live document for single-goroutine use. The
// returned maps are shared with ApplyOperation; concurrent readers must
// go through MarshalDocument instead.
func (ds *DocumentState) GetDocument() *document.Document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.doc
}

// MarshalDocument encodes the document and returns it with the matching
// server sequence. Encoding happens under the read lock, so concurrent
// ApplyOperation calls cannot mutate the maps mid-encode.
func (ds *DocumentState) MarshalDocument() (json.RawMessage, int64, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	data, err := json.Marshal(ds.doc)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal document: %w", err)
	}
	return data, ds.serverSeq, nil
}

// ServerSeq returns the current server sequence number
func (ds *DocumentState) ServerSeq() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq
}

// ApplyOperation applies an operation to the document and returns the server sequence
func (ds *DocumentState) ApplyOperation(op Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := ds.applyOperationLocked(op); err != nil {
		return 0, err
	}

	ds.serverSeq++
	ds.opLog = append(ds.opLog, op)
	ds.doc.Diagram.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	return ds.serverSeq, nil
}

func (ds *DocumentState) applyOperationLocked(op Operation) error {
	switch op.Type {
	case "component.create":
		return ds.applyComponentCreate(op)
	case "component.delete":
		return ds.applyComponentDelete(op)
	case "component.move":
		return ds.applyComponentMove(op)
	case "component.resize":
		return ds.applyComponentResize(op)
	case "line.connect":
		return ds.applyLineConnect(op)
	case "line.disconnect":
		return ds.applyLineDisconnect(op)
	case "diagram.rename":
		return ds.applyDiagramRename(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func (ds *DocumentState) applyComponentCreate(op Operation) error {
	var node document.ComponentNode
	if err := json.Unmarshal(op.Component, &node); err != nil {
		return fmt.Errorf("invalid component: %w", err)
	}
	if node.ID == "" {
		return fmt.Errorf("component missing id")
	}
	if _, exists := ds.doc.Components[node.ID]; exists {
		return fmt.Errorf("component already exists: %s", node.ID)
	}

	ds.doc.Components[node.ID] = node

	order := ds.doc.Diagram.ComponentOrder
	if op.Index != nil && *op.Index >= 0 && *op.Index <= len(order) {
		newOrder := make([]string, 0, len(order)+1)
		newOrder = append(newOrder, order[:*op.Index]...)
		newOrder = append(newOrder, node.ID)
		newOrder = append(newOrder, order[*op.Index:]...)
		ds.doc.Diagram.ComponentOrder = newOrder
	} else {
		ds.doc.Diagram.ComponentOrder = append(order, node.ID)
	}

	return nil
}

func (ds *DocumentState) applyComponentDelete(op Operation) error {
	if _, ok := ds.doc.Components[op.ObjectID]; !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}

	// Lines touching the component go with it.
	for id, line := range ds.doc.Lines {
		if line.From.Component == op.ObjectID || line.To.Component == op.ObjectID {
			delete(ds.doc.Lines, id)
		}
	}

	delete(ds.doc.Components, op.ObjectID)

	order := ds.doc.Diagram.ComponentOrder
	newOrder := make([]string, 0, len(order))
	for _, id := range order {
		if id != op.ObjectID {
			newOrder = append(newOrder, id)
		}
	}
	ds.doc.Diagram.ComponentOrder = newOrder

	return nil
}

func (ds *DocumentState) applyComponentMove(op Operation) error {
	node, ok := ds.doc.Components[op.ObjectID]
	if !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	if op.X == nil || op.Y == nil {
		return fmt.Errorf("move missing coordinates")
	}

	node.X = *op.X
	node.Y = *op.Y
	ds.doc.Components[op.ObjectID] = node
	return nil
}

func (ds *DocumentState) applyComponentResize(op Operation) error {
	node, ok := ds.doc.Components[op.ObjectID]
	if !ok {
		return fmt.Errorf("component not found: %s", op.ObjectID)
	}
	if op.Width == nil || op.Height == nil {
		return fmt.Errorf("resize missing dimensions")
	}
	if *op.Width < 1 || *op.Height < 1 {
		return fmt.Errorf("resize below minimum size")
	}

	if op.X != nil {
		node.X = *op.X
	}
	if op.Y != nil {
		node.Y = *op.Y
	}
	node.Width = *op.Width
	node.Height = *op.Height
	ds.doc.Components[op.ObjectID] = node
	return nil
}

func (ds *DocumentState) applyLineConnect(op Operation) error {
	var line document.LineNode
	if err := json.Unmarshal(op.Line, &line); err != nil {
		return fmt.Errorf("invalid line: %w", err)
	}
	if line.ID == "" {
		return fmt.Errorf("line missing id")
	}
	if _, exists := ds.doc.Lines[line.ID]; exists {
		return fmt.Errorf("line already exists: %s", line.ID)
	}
	if err := ds.validatePortRef(line.From, "out"); err != nil {
		return fmt.Errorf("line from: %w", err)
	}
	if err := ds.validatePortRef(line.To, "in"); err != nil {
		return fmt.Errorf("line to: %w", err)
	}
	if line.From.Component == line.To.Component {
		return fmt.Errorf("line connects a component to itself")
	}

	ds.doc.Lines[line.ID] = line
	return nil
}

func (ds *DocumentState) applyLineDisconnect(op Operation) error {
	if _, ok := ds.doc.Lines[op.ObjectID]; !ok {
		return fmt.Errorf("line not found: %s", op.ObjectID)
	}
	delete(ds.doc.Lines, op.ObjectID)
	return nil
}

func (ds *DocumentState) applyDiagramRename(op Operation) error {
	if op.Name == "" {
		return fmt.Errorf("rename missing name")
	}
	ds.doc.Diagram.Name = op.Name
	return nil
}

func (ds *DocumentState) validatePortRef(ref document.PortRef, wantDirection string) error {
	node, ok := ds.doc.Components[ref.Component]
	if !ok {
		return fmt.Errorf("component not found: %s", ref.Component)
	}
	if ref.Direction != wantDirection {
		return fmt.Errorf("port direction %q, want %q", ref.Direction, wantDirection)
	}
	count := node.Outputs
	if wantDirection == "in" {
		count = node.Inputs
	}
	if ref.Port < 0 || ref.Port >= count {
		return fmt.Errorf("port index %d out of range", ref.Port)
	}
	return nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
