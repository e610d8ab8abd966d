package selection

import "math"

// Side length of the square hit zone centered on each corner handle.
const handleSize = 12

type HandlePosition string

const (
	HandleTopLeft     HandlePosition = "top-left"
	HandleTopRight    HandlePosition = "top-right"
	HandleBottomLeft  HandlePosition = "bottom-left"
	HandleBottomRight HandlePosition = "bottom-right"
)

// Handle is one corner resize handle of a selection box.
type Handle struct {
	X        float64
	Y        float64
	Position HandlePosition
}

// Handles returns the four corner handles of a bounding box.
func Handles(b Box) [4]Handle {
	return [4]Handle{
		{X: b.X, Y: b.Y, Position: HandleTopLeft},
		{X: b.X + b.Width, Y: b.Y, Position: HandleTopRight},
		{X: b.X, Y: b.Y + b.Height, Position: HandleBottomLeft},
		{X: b.X + b.Width, Y: b.Y + b.Height, Position: HandleBottomRight},
	}
}

// HandleAt returns the handle whose hit zone contains the point. A point is
// on a handle when it falls within half the handle size of its center.
func HandleAt(x, y float64, b Box) (Handle, bool) {
	for _, h := range Handles(b) {
		if math.Abs(x-h.X) < handleSize/2 && math.Abs(y-h.Y) < handleSize/2 {
			return h, true
		}
	}
	return Handle{}, false
}

// opposite returns the corner diagonally across from a handle position. That
// corner stays fixed during a resize.
func opposite(p HandlePosition) HandlePosition {
	switch p {
	case HandleTopLeft:
		return HandleBottomRight
	case HandleTopRight:
		return HandleBottomLeft
	case HandleBottomLeft:
		return HandleTopRight
	default:
		return HandleTopLeft
	}
}

// corner returns the coordinates of a named corner of a box.
func corner(b Box, p HandlePosition) (float64, float64) {
	switch p {
	case HandleTopLeft:
		return b.X, b.Y
	case HandleTopRight:
		return b.X + b.Width, b.Y
	case HandleBottomLeft:
		return b.X, b.Y + b.Height
	default:
		return b.X + b.Width, b.Y + b.Height
	}
}
