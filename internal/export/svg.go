package export

import (
	"fmt"
	"strings"

	"github.com/gridline/gridline/backend-go/internal/document"
	"github.com/gridline/gridline/backend-go/internal/engine"
)

// Options controls the output raster size. Zero values fall back to the
// diagram's own dimensions.
type Options struct {
	Width  int
	Height int
}

// RenderSVG renders a diagram document to a standalone SVG. The document
// goes through the same draw-command compiler the interactive canvas
// uses, so exports match the editor pixel for pixel. Unresolvable lines
// are skipped, matching load behavior.
func RenderSVG(doc *document.Document, opts Options) ([]byte, error) {
	ed := engine.NewEditor(engine.DefaultStyle(), nil)
	ed.Renderer().GridEnabled = false

	if _, err := ed.LoadSnapshot(doc); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	width := opts.Width
	if width <= 0 {
		width = doc.Diagram.Width
	}
	height := opts.Height
	if height <= 0 {
		height = doc.Diagram.Height
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid export size %dx%d", width, height)
	}

	commands := ed.Render(float64(width), float64(height))

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	b.WriteByte('\n')

	background := doc.Diagram.Background
	if background == "" {
		background = engine.DefaultStyle().Background
	}
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, width, height, background)
	b.WriteByte('\n')

	for _, cmd := range commands {
		writeCommand(&b, cmd)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

func writeCommand(b *strings.Builder, cmd engine.DrawCommand) {
	switch cmd.Op {
	case "path":
		d := pathData(cmd.Path)
		if d == "" {
			return
		}
		b.WriteString(`<path d="`)
		b.WriteString(d)
		b.WriteString(`"`)
		writeTransform(b, cmd.Transform)
		if cmd.Fill != "" {
			fmt.Fprintf(b, ` fill="%s"`, cmd.Fill)
		} else {
			b.WriteString(` fill="none"`)
		}
		if cmd.Stroke != "" {
			fmt.Fprintf(b, ` stroke="%s" stroke-width="%s"`, cmd.Stroke, ftoa(cmd.StrokeWidth))
		}
		if len(cmd.Dash) > 0 {
			parts := make([]string, len(cmd.Dash))
			for i, v := range cmd.Dash {
				parts[i] = ftoa(v)
			}
			fmt.Fprintf(b, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
			if cmd.DashOffset != 0 {
				fmt.Fprintf(b, ` stroke-dashoffset="%s"`, ftoa(cmd.DashOffset))
			}
		}
		if cmd.Opacity > 0 && cmd.Opacity < 1 {
			fmt.Fprintf(b, ` opacity="%s"`, ftoa(cmd.Opacity))
		}
		b.WriteString("/>\n")

	case "text":
		if cmd.Text == "" {
			return
		}
		fmt.Fprintf(b, `<text x="%s" y="%s"`, ftoa(cmd.X), ftoa(cmd.Y))
		writeTransform(b, cmd.Transform)
		if cmd.Fill != "" {
			fmt.Fprintf(b, ` fill="%s"`, cmd.Fill)
		}
		b.WriteString(` font-family="sans-serif" font-size="12" text-anchor="middle">`)
		b.WriteString(escapeText(cmd.Text))
		b.WriteString("</text>\n")
	}
}

func writeTransform(b *strings.Builder, m []float64) {
	if len(m) != 6 {
		return
	}
	if m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0 {
		return
	}
	fmt.Fprintf(b, ` transform="matrix(%s %s %s %s %s %s)"`,
		ftoa(m[0]), ftoa(m[1]), ftoa(m[2]), ftoa(m[3]), ftoa(m[4]), ftoa(m[5]))
}

// pathData converts a draw-command path to SVG path data. The verbs map
// one to one; unknown verbs are dropped.
func pathData(path []engine.PathCommand) string {
	var b strings.Builder
	for _, pc := range path {
		if len(pc) == 0 {
			continue
		}
		verb, ok := pc[0].(string)
		if !ok {
			continue
		}
		switch verb {
		case "M", "L":
			if len(pc) < 3 {
				continue
			}
			b.WriteString(verb)
			b.WriteString(ftoa(num(pc[1])))
			b.WriteByte(' ')
			b.WriteString(ftoa(num(pc[2])))
		case "C":
			if len(pc) < 7 {
				continue
			}
			b.WriteString("C")
			for i := 1; i <= 6; i++ {
				if i > 1 {
					b.WriteByte(' ')
				}
				b.WriteString(ftoa(num(pc[i])))
			}
		case "Z":
			b.WriteString("Z")
		}
	}
	return b.String()
}

func num(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func ftoa(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
