package export

import (
	"strings"
	"testing"

	"github.com/gridline/gridline/backend-go/internal/document"
)

func TestRenderSVGSampleDocument(t *testing.T) {
	doc := document.NewSampleDocument("diag_sample")

	svg, err := RenderSVG(doc, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(svg)

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("expected svg root element")
	}
	if !strings.Contains(out, `width="1280"`) || !strings.Contains(out, `height="720"`) {
		t.Error("expected diagram dimensions on the root element")
	}
	if !strings.Contains(out, "<path") {
		t.Error("expected at least one path element")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Error("expected the dashed sample line to emit a dash array")
	}
	if !strings.Contains(out, ">rows</text>") {
		t.Error("expected the sample line label")
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Error("expected closing svg tag")
	}
}

func TestRenderSVGSizeOverride(t *testing.T) {
	doc := document.NewEmptyDocument("diag_empty", "Empty")

	svg, err := RenderSVG(doc, Options{Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, `viewBox="0 0 640 480"`) {
		t.Errorf("expected 640x480 viewBox, got: %s", out[:120])
	}
}

func TestRenderSVGInvalidSize(t *testing.T) {
	doc := document.NewEmptyDocument("diag_empty", "Empty")
	doc.Diagram.Width = 0
	doc.Diagram.Height = 0

	if _, err := RenderSVG(doc, Options{}); err == nil {
		t.Error("expected error for zero export size")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	doc := document.NewSampleDocument("diag_sample")
	for id, line := range doc.Lines {
		line.Style.Label = `a<b&"c"`
		doc.Lines[id] = line
	}

	svg, err := RenderSVG(doc, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(svg)
	if strings.Contains(out, `>a<b&"c"<`) {
		t.Error("label was not escaped")
	}
	if !strings.Contains(out, "a&lt;b&amp;&quot;c&quot;") {
		t.Error("expected escaped label text")
	}
}
