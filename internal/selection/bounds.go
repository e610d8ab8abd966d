// Package selection implements the interactive transform engine: bounding
// boxes, hit-testing, resize handles and the per-kind drag/resize math.
// Hit-testing is a bounding-box approximation, not an exact outline test.
package selection

import (
	"math"

	"sketchwire/internal/shape"
)

// Padding added around thin shapes so lines and freehand strokes are still
// clickable.
const hitPadding = 5

// Box is an axis-aligned bounding rectangle in world coordinates.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

func (b Box) expand(pad float64) Box {
	return Box{X: b.X - pad, Y: b.Y - pad, Width: b.Width + 2*pad, Height: b.Height + 2*pad}
}

// BoundsOf computes the bounding box of a shape. Rectangles are normalized so
// negative width/height still yield a well-formed box. Line boxes carry the
// hit padding; pencil boxes are the raw point extent, padding is applied by
// the caller where needed.
func BoundsOf(s shape.Shape) Box {
	switch v := s.(type) {
	case *shape.Rect:
		left := v.X
		if v.Width < 0 {
			left = v.X + v.Width
		}
		top := v.Y
		if v.Height < 0 {
			top = v.Y + v.Height
		}
		return Box{X: left, Y: top, Width: math.Abs(v.Width), Height: math.Abs(v.Height)}

	case *shape.Circle:
		return Box{
			X:      v.CenterX - v.Radius,
			Y:      v.CenterY - v.Radius,
			Width:  2 * v.Radius,
			Height: 2 * v.Radius,
		}

	case *shape.Line:
		minX := math.Min(v.StartX, v.EndX)
		minY := math.Min(v.StartY, v.EndY)
		maxX := math.Max(v.StartX, v.EndX)
		maxY := math.Max(v.StartY, v.EndY)
		return Box{
			X:      minX - hitPadding,
			Y:      minY - hitPadding,
			Width:  maxX - minX + 2*hitPadding,
			Height: maxY - minY + 2*hitPadding,
		}

	case *shape.Pencil:
		if len(v.Points) == 0 {
			return Box{}
		}
		minX, minY := v.Points[0].X, v.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range v.Points[1:] {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}

	default:
		return Box{}
	}
}

// HitTest reports whether the world point lies within the shape's padded
// bounding box.
func HitTest(x, y float64, s shape.Shape) bool {
	b := BoundsOf(s)
	if _, ok := s.(*shape.Pencil); ok {
		b = b.expand(hitPadding)
	}
	return b.Contains(x, y)
}

// TopmostAt scans the document back-to-front and returns the topmost shape
// whose bounds contain the point, or nil.
func TopmostAt(doc *shape.Document, x, y float64) shape.Shape {
	shapes := doc.Shapes()
	for i := len(shapes) - 1; i >= 0; i-- {
		if HitTest(x, y, shapes[i]) {
			return shapes[i]
		}
	}
	return nil
}
