package engine

// Zoom limits. Values outside this range would produce degenerate
// transforms, so zoom requests are clamped rather than rejected.
const (
	MinZoom = 0.05
	MaxZoom = 20.0
)

// Viewport maps between screen space and world space via a pan offset
// and a strictly positive zoom scalar:
//
//	screen = world*zoom + pan
//	world  = (screen - pan) / zoom
type Viewport struct {
	pan  Point
	zoom float64
}

// NewViewport creates a viewport at the origin with 1:1 zoom.
func NewViewport() *Viewport {
	return &Viewport{zoom: 1.0}
}

// Zoom returns the current zoom scalar.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// PanOffset returns the current pan offset in screen units.
func (v *Viewport) PanOffset() Point {
	return v.pan
}

// WorldToScreen converts a world-space point to screen space.
func (v *Viewport) WorldToScreen(p Point) Point {
	return Point{p.X*v.zoom + v.pan.X, p.Y*v.zoom + v.pan.Y}
}

// ScreenToWorld converts a screen-space point to world space.
func (v *Viewport) ScreenToWorld(p Point) Point {
	return Point{(p.X - v.pan.X) / v.zoom, (p.Y - v.pan.Y) / v.zoom}
}

// Pan moves the viewport by a screen-space delta.
func (v *Viewport) Pan(delta Point) {
	v.pan = v.pan.Add(delta)
}

// SetPan replaces the pan offset.
func (v *Viewport) SetPan(pan Point) {
	v.pan = pan
}

// SetZoom sets the zoom scalar, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(zoom float64) {
	v.zoom = clampZoom(zoom)
}

// ZoomAt multiplies the zoom by factor while keeping the world point
// under the given screen point fixed on screen.
func (v *Viewport) ZoomAt(screenPt Point, factor float64) {
	anchor := v.ScreenToWorld(screenPt)
	v.zoom = clampZoom(v.zoom * factor)

	// Recompute pan so anchor maps back to screenPt under the new zoom.
	v.pan = Point{
		X: screenPt.X - anchor.X*v.zoom,
		Y: screenPt.Y - anchor.Y*v.zoom,
	}
}

// Matrix returns the world→screen transform as an affine matrix.
func (v *Viewport) Matrix() Matrix2D {
	return Matrix2D{v.zoom, 0, 0, v.zoom, v.pan.X, v.pan.Y}
}

// VisibleWorldRect returns the world-space rect covered by a screen of
// the given size.
func (v *Viewport) VisibleWorldRect(screenWidth, screenHeight float64) Rect {
	topLeft := v.ScreenToWorld(Point{0, 0})
	bottomRight := v.ScreenToWorld(Point{screenWidth, screenHeight})
	return RectFromPoints(topLeft, bottomRight)
}

func clampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
