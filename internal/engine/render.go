package engine

import (
	"encoding/json"
	"math"
)

// DrawCommand represents a single drawing operation for the frontend to
// execute on a Canvas2D context. Commands are emitted in painter's
// order (back to front).
type DrawCommand struct {
	Op          string        `json:"op"` // "path" or "text"
	ObjectID    string        `json:"objectId,omitempty"`
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`
	Text        string        `json:"text,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Dash        []float64     `json:"dash,omitempty"`
	DashOffset  float64       `json:"dashOffset,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
}

// Style is the renderer's explicit visual configuration, threaded
// through instead of living in a mutable singleton.
type Style struct {
	Background      string
	GridColor       string
	GridStep        float64 // world units between grid lines
	ComponentFill   string
	ComponentStroke string
	LineColor       string
	PreviewColor    string
	SelectionColor  string
	SelectionFill   string
	HandleFill      string
	LabelColor      string
	MarkerSize      float64 // screen px, multiplicity glyphs
	ArrowSize       float64 // screen px
	HandleSize      float64 // screen px
}

// DefaultStyle returns the stock editor theme.
func DefaultStyle() Style {
	return Style{
		Background:      "#1a1a2e",
		GridColor:       "#2a2a3e",
		GridStep:        20,
		ComponentFill:   "#26263a",
		ComponentStroke: "#8888aa",
		LineColor:       "#a0a0c0",
		PreviewColor:    "#6c9ef8",
		SelectionColor:  "#6c9ef8",
		SelectionFill:   "rgba(108,158,248,0.15)",
		HandleFill:      "#6c9ef8",
		LabelColor:      "#d0d0e0",
		MarkerSize:      8,
		ArrowSize:       10,
		HandleSize:      8,
	}
}

// Renderer compiles the editor state into a draw-command buffer once per
// frame. It reads viewport + scene and never mutates either, apart from
// the idempotent port re-layout update pass.
type Renderer struct {
	style       Style
	GridEnabled bool
}

// NewRenderer creates a renderer with the given style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style, GridEnabled: true}
}

// Compile produces the frame's draw commands for a screen of the given
// size. Pass order: update pass, grid, dynamic components, lines,
// preview line, selection rect, selection handles, static overlays.
func (r *Renderer) Compile(ed *Editor, screenWidth, screenHeight float64) []DrawCommand {
	var commands []DrawCommand

	scene := ed.Scene()
	viewport := ed.Viewport()
	world := viewport.Matrix().ToSlice()
	zoom := viewport.Zoom()
	dashPhase := float64(ed.AnimationPhase())

	// Update pass: every component recomputes its own ports against the
	// current bounds before anything is drawn.
	for _, c := range scene.Components() {
		c.LayoutPorts()
	}

	if r.GridEnabled {
		if grid := r.gridPath(viewport, screenWidth, screenHeight); len(grid) > 0 {
			commands = append(commands, DrawCommand{
				Op:          "path",
				Transform:   world,
				Path:        grid,
				Stroke:      r.style.GridColor,
				StrokeWidth: 1 / zoom,
				Opacity:     1,
			})
		}
	}

	for _, c := range scene.Components() {
		if c.Static {
			continue
		}
		commands = append(commands, r.componentCommand(c, viewport, zoom))
	}

	for _, l := range scene.Lines() {
		commands = append(commands, r.lineCommands(l, world, zoom, dashPhase)...)
	}

	if preview := ed.Controller().Preview(); preview != nil && !preview.Degenerate() {
		cmd := r.strokedPathCommand(preview, world, zoom, r.style.PreviewColor)
		cmd.Dash = []float64{4 / zoom, 4 / zoom}
		commands = append(commands, cmd)
	}

	if rect, active := ed.Controller().SelectionRect(); active && !rect.IsEmpty() {
		commands = append(commands, DrawCommand{
			Op:          "path",
			Transform:   world,
			Path:        rectPath(rect),
			Fill:        r.style.SelectionFill,
			Stroke:      r.style.SelectionColor,
			StrokeWidth: 1 / zoom,
			Opacity:     1,
		})
	}

	commands = append(commands, r.handleCommands(ed, world, zoom)...)

	// Static overlay components draw last, in screen space.
	for _, c := range scene.Components() {
		if !c.Static {
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "path",
			ObjectID:    c.ID,
			Transform:   Translate(c.Position.X, c.Position.Y).ToSlice(),
			Path:        c.Paths(),
			Fill:        r.style.ComponentFill,
			Stroke:      r.style.ComponentStroke,
			StrokeWidth: 1,
			Opacity:     1,
		})
	}

	return commands
}

func (r *Renderer) componentCommand(c *Component, viewport *Viewport, zoom float64) DrawCommand {
	// Component bodies draw in local coordinates under
	// viewport * translate(position).
	transform := viewport.Matrix().Multiply(Translate(c.Position.X, c.Position.Y))
	return DrawCommand{
		Op:          "path",
		ObjectID:    c.ID,
		Transform:   transform.ToSlice(),
		Path:        c.Paths(),
		Fill:        r.style.ComponentFill,
		Stroke:      r.style.ComponentStroke,
		StrokeWidth: 1.5 / zoom,
		Opacity:     1,
	}
}

func (r *Renderer) lineCommands(l *ConnectionLine, world []float64, zoom, dashPhase float64) []DrawCommand {
	if l.Degenerate() {
		return nil
	}

	color := r.style.LineColor
	if l.Selected {
		color = r.style.SelectionColor
	}

	cmd := r.strokedPathCommand(l, world, zoom, color)
	if len(l.Style.Dash) > 0 {
		cmd.Dash = l.Style.Dash
		cmd.DashOffset = -dashPhase / zoom
	}
	out := []DrawCommand{cmd}

	start := l.Start.Position()
	end := l.End.Position()
	arrowSize := r.style.ArrowSize / zoom

	if l.Style.ArrowEnd {
		out = append(out, DrawCommand{
			Op:        "path",
			Transform: world,
			Path:      arrowPath(end, lineApproachPoint(l, false), arrowSize),
			Fill:      color,
			Opacity:   1,
		})
	}
	if l.Style.ArrowStart {
		out = append(out, DrawCommand{
			Op:        "path",
			Transform: world,
			Path:      arrowPath(start, lineApproachPoint(l, true), arrowSize),
			Fill:      color,
			Opacity:   1,
		})
	}

	markerSize := r.style.MarkerSize / zoom
	if l.Style.StartMarker != MultiplicityNone {
		out = append(out, r.markerCommand(l.Style.StartMarker, start, lineApproachPoint(l, true), markerSize, world, zoom, color))
	}
	if l.Style.EndMarker != MultiplicityNone {
		out = append(out, r.markerCommand(l.Style.EndMarker, end, lineApproachPoint(l, false), markerSize, world, zoom, color))
	}

	if l.Style.Label != "" {
		mid := Route(start, end, l.Routing).Midpoint()
		out = append(out, DrawCommand{
			Op:        "text",
			ObjectID:  l.ID,
			Transform: world,
			Text:      l.Style.Label,
			X:         mid.X,
			Y:         mid.Y - 6/zoom,
			Fill:      r.style.LabelColor,
			Opacity:   1,
		})
	}

	return out
}

func (r *Renderer) strokedPathCommand(l *ConnectionLine, world []float64, zoom float64, color string) DrawCommand {
	path := Route(l.Start.Position(), l.End.Position(), l.Routing)

	var pcs []PathCommand
	if path.IsCurve() {
		p := path.Points
		pcs = []PathCommand{
			{"M", p[0].X, p[0].Y},
			{"C", p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y},
		}
	} else {
		pcs = append(pcs, PathCommand{"M", path.Points[0].X, path.Points[0].Y})
		for _, pt := range path.Points[1:] {
			pcs = append(pcs, PathCommand{"L", pt.X, pt.Y})
		}
	}

	width := l.Style.StrokeWidth
	if width <= 0 {
		width = 2
	}

	return DrawCommand{
		Op:          "path",
		ObjectID:    l.ID,
		Transform:   world,
		Path:        pcs,
		Stroke:      color,
		StrokeWidth: width / zoom,
		Opacity:     1,
	}
}

func (r *Renderer) markerCommand(m Multiplicity, at, toward Point, size float64, world []float64, zoom float64, color string) DrawCommand {
	var path []PathCommand
	switch m {
	case MultiplicityOne:
		// A bar perpendicular to the line, one marker-length in.
		path = barMarkerPath(at, toward, size)
	case MultiplicityMany:
		// Crow's foot: two struts fanning out from a point on the line.
		path = crowsFootPath(at, toward, size)
	}

	return DrawCommand{
		Op:          "path",
		Transform:   world,
		Path:        path,
		Stroke:      color,
		StrokeWidth: 1.5 / zoom,
		Opacity:     1,
	}
}

func (r *Renderer) handleCommands(ed *Editor, world []float64, zoom float64) []DrawCommand {
	var out []DrawCommand
	half := r.style.HandleSize / zoom / 2

	for _, c := range ed.Selection().Components() {
		b := c.Bounds()

		out = append(out, DrawCommand{
			Op:          "path",
			Transform:   world,
			Path:        rectPath(b),
			Stroke:      r.style.SelectionColor,
			StrokeWidth: 1 / zoom,
			Opacity:     1,
		})

		for _, corner := range []Point{
			{b.X, b.Y},
			{b.X + b.Width, b.Y},
			{b.X, b.Y + b.Height},
			{b.X + b.Width, b.Y + b.Height},
		} {
			out = append(out, DrawCommand{
				Op:        "path",
				Transform: world,
				Path:      rectPath(Rect{corner.X - half, corner.Y - half, 2 * half, 2 * half}),
				Fill:      r.style.HandleFill,
				Opacity:   1,
			})
		}
	}

	for _, p := range ed.Selection().Ports() {
		out = append(out, DrawCommand{
			Op:        "path",
			Transform: world,
			Path:      rectPath(Rect{p.Center.X - half, p.Center.Y - half, 2 * half, 2 * half}),
			Fill:      r.style.HandleFill,
			Opacity:   1,
		})
	}

	return out
}

// gridPath builds one path covering the visible world rect with lines
// every GridStep world units.
func (r *Renderer) gridPath(v *Viewport, screenWidth, screenHeight float64) []PathCommand {
	step := r.style.GridStep
	if step <= 0 {
		return nil
	}

	visible := v.VisibleWorldRect(screenWidth, screenHeight)
	startX := math.Floor(visible.X/step) * step
	startY := math.Floor(visible.Y/step) * step
	endX := visible.X + visible.Width
	endY := visible.Y + visible.Height

	// Cap the line count so extreme zoom-out doesn't explode the buffer.
	const maxLines = 512

	var path []PathCommand
	count := 0
	for x := startX; x <= endX && count < maxLines; x += step {
		path = append(path, PathCommand{"M", x, visible.Y}, PathCommand{"L", x, endY})
		count++
	}
	for y := startY; y <= endY && count < maxLines; y += step {
		path = append(path, PathCommand{"M", visible.X, y}, PathCommand{"L", endX, y})
		count++
	}
	return path
}

// Midpoint returns the path's halfway point, used for label placement.
func (p Path) Midpoint() Point {
	switch {
	case p.IsCurve() && len(p.Points) == 4:
		return CubicPoint(p.Points[0], p.Points[1], p.Points[2], p.Points[3], 0.5)
	case len(p.Points) >= 2:
		a := p.Points[0]
		b := p.Points[len(p.Points)-1]
		return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
	default:
		return Point{}
	}
}

// lineApproachPoint returns a point on the line just inside the given
// end, giving arrowheads and markers their orientation.
func lineApproachPoint(l *ConnectionLine, atStart bool) Point {
	path := Route(l.Start.Position(), l.End.Position(), l.Routing)
	if path.IsCurve() {
		if atStart {
			return path.Points[1]
		}
		return path.Points[2]
	}
	if atStart {
		return path.Points[1]
	}
	return path.Points[len(path.Points)-2]
}

func arrowPath(tip, toward Point, size float64) []PathCommand {
	left, right := arrowWings(tip, toward, size)
	return []PathCommand{
		{"M", tip.X, tip.Y},
		{"L", left.X, left.Y},
		{"L", right.X, right.Y},
		{"Z"},
	}
}

func barMarkerPath(at, toward Point, size float64) []PathCommand {
	angle := math.Atan2(toward.Y-at.Y, toward.X-at.X)
	cx := at.X + size*math.Cos(angle)
	cy := at.Y + size*math.Sin(angle)
	// Perpendicular bar through (cx, cy).
	px := math.Cos(angle + math.Pi/2)
	py := math.Sin(angle + math.Pi/2)
	return []PathCommand{
		{"M", cx - px*size/2, cy - py*size/2},
		{"L", cx + px*size/2, cy + py*size/2},
	}
}

func crowsFootPath(at, toward Point, size float64) []PathCommand {
	angle := math.Atan2(toward.Y-at.Y, toward.X-at.X)
	bx := at.X + size*math.Cos(angle)
	by := at.Y + size*math.Sin(angle)
	px := math.Cos(angle + math.Pi/2)
	py := math.Sin(angle + math.Pi/2)
	return []PathCommand{
		{"M", at.X, at.Y},
		{"L", bx + px*size/2, by + py*size/2},
		{"M", at.X, at.Y},
		{"L", bx - px*size/2, by - py*size/2},
	}
}

func rectPath(r Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
