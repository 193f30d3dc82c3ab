package document

import (
	"encoding/json"
	"time"

	"github.com/gridline/gridline/backend-go/internal/typeid"
)

// NewSampleDocument builds a small three-stage pipeline diagram used by
// the playground and the WASM demo.
func NewSampleDocument(diagramID string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)

	sourceID := typeid.NewComponentID()
	transformID := typeid.NewComponentID()
	sinkID := typeid.NewComponentID()
	legendID := typeid.NewComponentID()
	line1ID := typeid.NewLineID()
	line2ID := typeid.NewLineID()

	return &Document{
		Diagram: Diagram{
			ID:             diagramID,
			Name:           "Sample pipeline",
			Version:        1,
			Width:          1280,
			Height:         720,
			Background:     "#1a1a2e",
			Grid:           true,
			ComponentOrder: []string{sourceID, transformID, sinkID, legendID},
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		Components: map[string]ComponentNode{
			sourceID: {
				ID: sourceID, Kind: "etl.source",
				X: 80, Y: 160, Width: 140, Height: 70,
				Inputs: 0, Outputs: 1,
				Props: json.RawMessage(`{"name":"orders.csv"}`),
			},
			transformID: {
				ID: transformID, Kind: "etl.transform",
				X: 340, Y: 160, Width: 140, Height: 70,
				Inputs: 1, Outputs: 1,
				Props: json.RawMessage(`{"name":"dedupe"}`),
			},
			sinkID: {
				ID: sinkID, Kind: "etl.sink",
				X: 600, Y: 160, Width: 140, Height: 70,
				Inputs: 1, Outputs: 0,
				Props: json.RawMessage(`{"name":"warehouse"}`),
			},
			legendID: {
				ID: legendID, Kind: "overlay.legend",
				X: 16, Y: 16, Width: 180, Height: 48,
				Static: true,
				Props:  json.RawMessage(`{"title":"Sample pipeline"}`),
			},
		},
		Lines: map[string]LineNode{
			line1ID: {
				ID:      line1ID,
				From:    PortRef{Component: sourceID, Direction: "out", Port: 0},
				To:      PortRef{Component: transformID, Direction: "in", Port: 0},
				Routing: "curved",
				Style:   LineStyle{ArrowEnd: true, StrokeWidth: 2},
			},
			line2ID: {
				ID:      line2ID,
				From:    PortRef{Component: transformID, Direction: "out", Port: 0},
				To:      PortRef{Component: sinkID, Direction: "in", Port: 0},
				Routing: "curved",
				Style:   LineStyle{ArrowEnd: true, StrokeWidth: 2, Dash: []float64{6, 4}, Label: "rows"},
			},
		},
	}
}
