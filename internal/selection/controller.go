package selection

import "sketchwire/internal/shape"

// Minimum width/height a resize gesture can produce.
const minDimension = 5

// Publisher receives the final state of a shape when a gesture ends.
// Intermediate frames stay local.
type Publisher interface {
	PublishShape(s shape.Shape)
}

// Controller tracks the selected shape and the state of an active drag or
// resize gesture. It mutates the selected shape in place, so the document
// entry updates with it, and publishes exactly once when a gesture ends.
type Controller struct {
	publisher Publisher
	selected  shape.Shape

	dragging    bool
	dragOffsetX float64
	dragOffsetY float64
	// Second anchor offset, used for the far endpoint of a line.
	dragEndOffsetX float64
	dragEndOffsetY float64

	resizing       bool
	activeHandle   Handle
	originalBounds Box
	// Pencil points captured at gesture start; drag and resize both map from
	// these so accumulated float error never creeps in frame over frame.
	originalPoints []shape.Point
	// For a line resize: true when the end point follows the active handle.
	dragEndpoint bool
}

func NewController(p Publisher) *Controller {
	return &Controller{publisher: p}
}

func (c *Controller) Selected() shape.Shape { return c.selected }
func (c *Controller) Select(s shape.Shape)  { c.selected = s }
func (c *Controller) Dragging() bool        { return c.dragging }
func (c *Controller) Resizing() bool        { return c.resizing }

// StartDrag records the pointer offset from the shape's anchor so the shape
// doesn't jump to the cursor on the first move.
func (c *Controller) StartDrag(x, y float64) {
	if c.selected == nil {
		return
	}
	c.dragging = true

	switch v := c.selected.(type) {
	case *shape.Rect:
		c.dragOffsetX, c.dragOffsetY = x-v.X, y-v.Y
	case *shape.Circle:
		c.dragOffsetX, c.dragOffsetY = x-v.CenterX, y-v.CenterY
	case *shape.Line:
		c.dragOffsetX, c.dragOffsetY = x-v.StartX, y-v.StartY
		c.dragEndOffsetX, c.dragEndOffsetY = x-v.EndX, y-v.EndY
	case *shape.Pencil:
		c.dragOffsetX, c.dragOffsetY = x, y
		c.originalPoints = snapshotPoints(v.Points)
	}
}

// UpdateDrag moves the selected shape so its anchor tracks the pointer minus
// the recorded offset.
func (c *Controller) UpdateDrag(x, y float64) {
	if !c.dragging || c.selected == nil {
		return
	}

	switch v := c.selected.(type) {
	case *shape.Rect:
		v.X, v.Y = x-c.dragOffsetX, y-c.dragOffsetY
	case *shape.Circle:
		v.CenterX, v.CenterY = x-c.dragOffsetX, y-c.dragOffsetY
	case *shape.Line:
		v.StartX, v.StartY = x-c.dragOffsetX, y-c.dragOffsetY
		v.EndX, v.EndY = x-c.dragEndOffsetX, y-c.dragEndOffsetY
	case *shape.Pencil:
		dx, dy := x-c.dragOffsetX, y-c.dragOffsetY
		for i := range v.Points {
			v.Points[i].X = c.originalPoints[i].X + dx
			v.Points[i].Y = c.originalPoints[i].Y + dy
		}
	}
}

// EndDrag finishes the gesture and publishes the final shape state once.
func (c *Controller) EndDrag() {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.originalPoints = nil
	c.publish()
}

// StartResize begins a resize if the point sits on one of the selection's
// corner handles. Returns false when no handle was hit.
func (c *Controller) StartResize(x, y float64) bool {
	if c.selected == nil {
		return false
	}
	bounds := BoundsOf(c.selected)
	h, ok := HandleAt(x, y, bounds)
	if !ok {
		return false
	}

	c.resizing = true
	c.activeHandle = h
	c.originalBounds = bounds

	switch v := c.selected.(type) {
	case *shape.Pencil:
		c.originalPoints = snapshotPoints(v.Points)
	case *shape.Line:
		sdx, sdy := v.StartX-h.X, v.StartY-h.Y
		edx, edy := v.EndX-h.X, v.EndY-h.Y
		c.dragEndpoint = edx*edx+edy*edy <= sdx*sdx+sdy*sdy
	}
	return true
}

// UpdateResize recomputes the bounding box from the dragged corner to the
// pointer, with the opposite corner fixed, and maps the new box back onto the
// selected shape per kind.
func (c *Controller) UpdateResize(x, y float64) {
	if !c.resizing || c.selected == nil {
		return
	}
	nb := resizeBox(c.originalBounds, c.activeHandle.Position, x, y)

	switch v := c.selected.(type) {
	case *shape.Rect:
		v.X, v.Y, v.Width, v.Height = nb.X, nb.Y, nb.Width, nb.Height

	case *shape.Circle:
		v.CenterX = nb.X + nb.Width/2
		v.CenterY = nb.Y + nb.Height/2
		if nb.Width < nb.Height {
			v.Radius = nb.Width / 2
		} else {
			v.Radius = nb.Height / 2
		}

	case *shape.Line:
		dx, dy := corner(nb, c.activeHandle.Position)
		fx, fy := corner(nb, opposite(c.activeHandle.Position))
		if c.dragEndpoint {
			v.EndX, v.EndY = dx, dy
			v.StartX, v.StartY = fx, fy
		} else {
			v.StartX, v.StartY = dx, dy
			v.EndX, v.EndY = fx, fy
		}

	case *shape.Pencil:
		ob := c.originalBounds
		sx, sy := 1.0, 1.0
		if ob.Width != 0 {
			sx = nb.Width / ob.Width
		}
		if ob.Height != 0 {
			sy = nb.Height / ob.Height
		}
		for i := range v.Points {
			v.Points[i].X = nb.X + (c.originalPoints[i].X-ob.X)*sx
			v.Points[i].Y = nb.Y + (c.originalPoints[i].Y-ob.Y)*sy
		}
	}
}

// EndResize finishes the gesture and publishes the final shape state once.
func (c *Controller) EndResize() {
	if !c.resizing {
		return
	}
	c.resizing = false
	c.activeHandle = Handle{}
	c.originalBounds = Box{}
	c.originalPoints = nil
	c.publish()
}

// Cancel abandons any active gesture without publishing. The shape keeps
// whatever geometry the last update gave it.
func (c *Controller) Cancel() {
	c.dragging = false
	c.resizing = false
	c.activeHandle = Handle{}
	c.originalBounds = Box{}
	c.originalPoints = nil
}

func (c *Controller) publish() {
	if c.publisher != nil && c.selected != nil {
		c.publisher.PublishShape(c.selected)
	}
}

// resizeBox computes the box spanned from the corner opposite the active
// handle to the pointer. Width and height are floored at minDimension, so a
// pointer crossing the fixed corner cannot invert or collapse the box.
func resizeBox(orig Box, pos HandlePosition, px, py float64) Box {
	fx, fy := corner(orig, opposite(pos))

	var w, h float64
	switch pos {
	case HandleTopLeft:
		w, h = fx-px, fy-py
	case HandleTopRight:
		w, h = px-fx, fy-py
	case HandleBottomLeft:
		w, h = fx-px, py-fy
	default:
		w, h = px-fx, py-fy
	}
	if w < minDimension {
		w = minDimension
	}
	if h < minDimension {
		h = minDimension
	}

	b := Box{Width: w, Height: h}
	switch pos {
	case HandleTopLeft:
		b.X, b.Y = fx-w, fy-h
	case HandleTopRight:
		b.X, b.Y = fx, fy-h
	case HandleBottomLeft:
		b.X, b.Y = fx-w, fy
	default:
		b.X, b.Y = fx, fy
	}
	return b
}

func snapshotPoints(pts []shape.Point) []shape.Point {
	out := make([]shape.Point, len(pts))
	copy(out, pts)
	return out
}
