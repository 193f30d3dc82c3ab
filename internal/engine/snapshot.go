package engine

import (
	"fmt"
	"time"

	"github.com/gridline/gridline/backend-go/internal/document"
	"github.com/gridline/gridline/backend-go/internal/typeid"
)

// SkippedLine reports one line that could not be resolved during load.
type SkippedLine struct {
	LineID string
	Reason string
}

// ToSnapshot exports the scene as a document DTO. Preview lines (free
// endpoints) are transient interaction state and are not exported.
func (ed *Editor) ToSnapshot() *document.Document {
	doc := document.NewEmptyDocument(typeid.NewDiagramID(), "Untitled")
	doc.Diagram.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	doc.Diagram.Grid = ed.renderer.GridEnabled

	for _, c := range ed.scene.Components() {
		doc.Diagram.ComponentOrder = append(doc.Diagram.ComponentOrder, c.ID)
		doc.Components[c.ID] = document.ComponentNode{
			ID:      c.ID,
			Kind:    c.Kind,
			X:       c.Position.X,
			Y:       c.Position.Y,
			Width:   c.Width,
			Height:  c.Height,
			Static:  c.Static,
			Inputs:  len(c.Inputs),
			Outputs: len(c.Outputs),
			Props:   c.Props,
		}
	}

	for _, l := range ed.scene.Lines() {
		if !l.Connected() {
			continue
		}
		doc.Lines[l.ID] = document.LineNode{
			ID:      l.ID,
			From:    portRef(l.Start.Port),
			To:      portRef(l.End.Port),
			Routing: string(l.Routing),
			Style: document.LineStyle{
				ArrowStart:  l.Style.ArrowStart,
				ArrowEnd:    l.Style.ArrowEnd,
				Dash:        l.Style.Dash,
				StartMarker: string(l.Style.StartMarker),
				EndMarker:   string(l.Style.EndMarker),
				Label:       l.Style.Label,
				StrokeWidth: l.Style.StrokeWidth,
			},
		}
	}

	return doc
}

// LoadSnapshot replaces the scene with the document's contents. Lines
// whose endpoints do not resolve to valid, existing ports are skipped
// and reported in the aggregate result; the rest of the document loads
// normally. History and selection are cleared.
func (ed *Editor) LoadSnapshot(doc *document.Document) ([]SkippedLine, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	ed.scene.Clear()
	ed.selection.Clear()
	ed.history.Clear()
	ed.renderer.GridEnabled = doc.Diagram.Grid

	// Components load in z-order; ids missing from the order list are
	// appended afterwards so nothing silently disappears.
	seen := make(map[string]bool, len(doc.Components))
	order := make([]string, 0, len(doc.Components))
	for _, id := range doc.Diagram.ComponentOrder {
		if _, ok := doc.Components[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for id := range doc.Components {
		if !seen[id] {
			order = append(order, id)
		}
	}

	for _, id := range order {
		node := doc.Components[id]
		c := NewComponent(node.ID, node.Kind, node.X, node.Y, node.Width, node.Height, node.Inputs, node.Outputs)
		c.Static = node.Static
		c.Props = node.Props
		ed.applyKind(c)
		ed.scene.AddComponent(c)
	}

	var skipped []SkippedLine
	for id, node := range doc.Lines {
		out, reason := ed.resolvePort(node.From, PortOut)
		if out == nil {
			skipped = append(skipped, SkippedLine{LineID: id, Reason: "from: " + reason})
			continue
		}
		in, reason := ed.resolvePort(node.To, PortIn)
		if in == nil {
			skipped = append(skipped, SkippedLine{LineID: id, Reason: "to: " + reason})
			continue
		}

		line, ok := ed.scene.Connect(id, out, in, RoutingMode(node.Routing))
		if !ok {
			skipped = append(skipped, SkippedLine{LineID: id, Reason: "ports incompatible or exhausted"})
			continue
		}
		line.Style = LineStyle{
			ArrowStart:  node.Style.ArrowStart,
			ArrowEnd:    node.Style.ArrowEnd,
			Dash:        node.Style.Dash,
			StartMarker: Multiplicity(node.Style.StartMarker),
			EndMarker:   Multiplicity(node.Style.EndMarker),
			Label:       node.Style.Label,
			StrokeWidth: node.Style.StrokeWidth,
		}
	}

	return skipped, nil
}

// LoadSampleDocument loads the built-in sample diagram.
func (ed *Editor) LoadSampleDocument() []SkippedLine {
	skipped, _ := ed.LoadSnapshot(document.NewSampleDocument(typeid.NewDiagramID()))
	return skipped
}

func (ed *Editor) resolvePort(ref document.PortRef, want PortDirection) (*Port, string) {
	c := ed.scene.ComponentByID(ref.Component)
	if c == nil {
		return nil, fmt.Sprintf("unknown component %q", ref.Component)
	}
	if ref.Direction != string(want) {
		return nil, fmt.Sprintf("direction %q, want %q", ref.Direction, want)
	}

	var p *Port
	if want == PortOut {
		p = c.OutputPort(ref.Port)
	} else {
		p = c.InputPort(ref.Port)
	}
	if p == nil {
		return nil, fmt.Sprintf("port index %d out of range", ref.Port)
	}
	return p, ""
}

func portRef(p *Port) document.PortRef {
	return document.PortRef{
		Component: p.Owner().ID,
		Direction: string(p.Direction),
		Port:      p.Index,
	}
}
