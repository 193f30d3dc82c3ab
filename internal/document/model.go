package document

import "encoding/json"

// Document is the external persistence DTO for a diagram: the full set
// of components and connection lines, referencing each other by id. The
// engine converts to and from this shape; wire/storage schema details
// stop here.
type Document struct {
	Diagram    Diagram                  `json:"diagram"`
	Components map[string]ComponentNode `json:"components"`
	Lines      map[string]LineNode      `json:"lines"`
}

// Diagram carries the document metadata. ComponentOrder is the z-order
// authority: components render (and win hit tests) in this order, last
// entry on top.
type Diagram struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        int      `json:"version"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Background     string   `json:"background"`
	Grid           bool     `json:"grid"`
	ComponentOrder []string `json:"componentOrder"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

// ComponentNode is one positioned node.
type ComponentNode struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Static  bool            `json:"static,omitempty"`
	Inputs  int             `json:"inputs"`
	Outputs int             `json:"outputs"`
	Props   json.RawMessage `json:"props,omitempty"`
}

// PortRef addresses a port by owning component id, direction, and index.
type PortRef struct {
	Component string `json:"component"`
	Direction string `json:"direction"`
	Port      int    `json:"port"`
}

// LineNode is one connection line. From must resolve to an out-port and
// To to an in-port of existing components.
type LineNode struct {
	ID      string    `json:"id"`
	From    PortRef   `json:"from"`
	To      PortRef   `json:"to"`
	Routing string    `json:"routing"`
	Style   LineStyle `json:"style"`
}

// LineStyle mirrors the engine's line style attributes.
type LineStyle struct {
	ArrowStart  bool      `json:"arrowStart,omitempty"`
	ArrowEnd    bool      `json:"arrowEnd,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
	StartMarker string    `json:"startMarker,omitempty"`
	EndMarker   string    `json:"endMarker,omitempty"`
	Label       string    `json:"label,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
}

// NewEmptyDocument creates an empty diagram document.
func NewEmptyDocument(diagramID, name string) *Document {
	return &Document{
		Diagram: Diagram{
			ID:             diagramID,
			Name:           name,
			Version:        1,
			Width:          1280,
			Height:         720,
			Background:     "#1a1a2e",
			Grid:           true,
			ComponentOrder: []string{},
		},
		Components: map[string]ComponentNode{},
		Lines:      map[string]LineNode{},
	}
}
