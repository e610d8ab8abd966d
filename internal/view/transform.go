// Package view implements the affine world/screen mapping of a canvas
// viewport: a pan offset plus a uniform scale.
package view

const (
	MinScale        = 0.1
	MaxScale        = 5.0
	ZoomSensitivity = 0.010
)

// Transform maps world coordinates to screen coordinates as
// screen = world*Scale + (X, Y).
type Transform struct {
	X     float64
	Y     float64
	Scale float64
}

func NewTransform() *Transform {
	return &Transform{Scale: 1}
}

func (t *Transform) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.Scale, (sy - t.Y) / t.Scale
}

func (t *Transform) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*t.Scale + t.X, wy*t.Scale + t.Y
}

// Pan shifts the viewport by a screen-space pointer delta. Scale does not
// apply to the delta.
func (t *Transform) Pan(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

// Zoom applies a wheel delta at screen position (cx, cy). The world point
// under the cursor stays fixed on screen: the focus point is resolved with
// the old transform and the translation is recomputed for the new scale.
func (t *Transform) Zoom(delta, cx, cy float64) {
	newScale := t.Scale * (1 + delta*ZoomSensitivity)
	if newScale < MinScale {
		newScale = MinScale
	}
	if newScale > MaxScale {
		newScale = MaxScale
	}

	focusX := (cx - t.X) / t.Scale
	focusY := (cy - t.Y) / t.Scale

	t.X = cx - focusX*newScale
	t.Y = cy - focusY*newScale
	t.Scale = newScale
}
