// Package tool interprets pointer gestures against the active tool and
// drives the shape document, the viewport and the selection engine. It is the
// only component that emits outbound shape publishes.
package tool

import (
	"github.com/google/uuid"

	"sketchwire/internal/selection"
	"sketchwire/internal/shape"
	"sketchwire/internal/view"
)

type Tool int

const (
	// ToolNone pans the viewport.
	ToolNone Tool = iota
	ToolSelection
	ToolRect
	ToolCircle
	ToolLine
	ToolPencil
)

// Publish a freehand stroke every this many appended points while drawing,
// so a long stroke doesn't produce a message per pointer move.
const pencilPublishEvery = 5

type gestureState int

const (
	stateIdle gestureState = iota
	statePanning
	stateDrawing
	stateSelecting
)

// Machine is the gesture state machine of one rendering surface. All methods
// are called from the surface's event thread; pointer coordinates are screen
// coordinates.
type Machine struct {
	doc       *shape.Document
	view      *view.Transform
	sel       *selection.Controller
	publisher selection.Publisher
	repaint   func()

	tool  Tool
	state gestureState

	// Drawing gesture.
	gestureID      string
	startX, startY float64 // world anchor of the gesture
	current        shape.Shape

	// Panning gesture, screen coordinates of the previous move.
	prevX, prevY float64

	newID func() string
}

func NewMachine(doc *shape.Document, v *view.Transform, publisher selection.Publisher, repaint func()) *Machine {
	if repaint == nil {
		repaint = func() {}
	}
	return &Machine{
		doc:       doc,
		view:      v,
		sel:       selection.NewController(publisher),
		publisher: publisher,
		repaint:   repaint,
		newID:     uuid.NewString,
	}
}

// Selection exposes the selection controller, e.g. for drawing the selection
// box.
func (m *Machine) Selection() *selection.Controller { return m.sel }

// SetTool switches the active tool. The choice persists across gestures.
func (m *Machine) SetTool(t Tool) { m.tool = t }

func (m *Machine) CurrentTool() Tool { return m.tool }

func (m *Machine) PointerDown(sx, sy float64) {
	wx, wy := m.view.ScreenToWorld(sx, sy)

	switch m.tool {
	case ToolSelection:
		m.pointerDownSelection(wx, wy)

	case ToolNone:
		m.state = statePanning
		m.prevX, m.prevY = sx, sy

	default:
		m.state = stateDrawing
		m.gestureID = m.newID()
		m.startX, m.startY = wx, wy
		m.current = nil
		if m.tool == ToolPencil {
			pencil := &shape.Pencil{ID: m.gestureID, Points: []shape.Point{{X: wx, Y: wy}}}
			m.doc.Upsert(pencil)
			m.current = pencil
		}
	}
	m.repaint()
}

func (m *Machine) pointerDownSelection(wx, wy float64) {
	// Handles of the current selection win over shapes underneath them.
	if m.sel.Selected() != nil && m.sel.StartResize(wx, wy) {
		m.state = stateSelecting
		return
	}
	if hit := selection.TopmostAt(m.doc, wx, wy); hit != nil {
		m.sel.Select(hit)
		m.sel.StartDrag(wx, wy)
		m.state = stateSelecting
		return
	}
	m.sel.Select(nil)
	m.state = stateIdle
}

func (m *Machine) PointerMove(sx, sy float64) {
	switch m.state {
	case statePanning:
		m.view.Pan(sx-m.prevX, sy-m.prevY)
		m.prevX, m.prevY = sx, sy

	case stateSelecting:
		wx, wy := m.view.ScreenToWorld(sx, sy)
		if m.sel.Dragging() {
			m.sel.UpdateDrag(wx, wy)
		} else if m.sel.Resizing() {
			m.sel.UpdateResize(wx, wy)
		}

	case stateDrawing:
		wx, wy := m.view.ScreenToWorld(sx, sy)
		m.updateDrawing(wx, wy)

	default:
		return
	}
	m.repaint()
}

func (m *Machine) updateDrawing(wx, wy float64) {
	if m.tool == ToolPencil {
		pencil, ok := m.current.(*shape.Pencil)
		if !ok {
			return
		}
		pencil.Points = append(pencil.Points, shape.Point{X: wx, Y: wy})
		if len(pencil.Points)%pencilPublishEvery == 0 {
			m.publishShape(pencil)
		}
		return
	}
	m.current = m.buildShape(wx, wy)
}

func (m *Machine) PointerUp(sx, sy float64) {
	switch m.state {
	case stateSelecting:
		if m.sel.Dragging() {
			m.sel.EndDrag()
		} else if m.sel.Resizing() {
			m.sel.EndResize()
		}

	case stateDrawing:
		wx, wy := m.view.ScreenToWorld(sx, sy)
		var final shape.Shape
		if m.tool == ToolPencil {
			final = m.current
		} else {
			final = m.buildShape(wx, wy)
		}
		if final != nil {
			m.doc.Upsert(final)
			m.publishShape(final)
		}
		m.current = nil
	}
	m.state = stateIdle
	m.repaint()
}

// PointerLeave is a pointer leaving the surface mid-gesture. Panning simply
// stops; an in-progress drawing gesture is cancelled without publishing.
func (m *Machine) PointerLeave() {
	switch m.state {
	case stateDrawing:
		m.current = nil
	case stateSelecting:
		m.sel.Cancel()
	}
	m.state = stateIdle
	m.repaint()
}

func (m *Machine) Wheel(delta, cx, cy float64) {
	m.view.Zoom(delta, cx, cy)
	m.repaint()
}

// buildShape materializes the in-progress shape for the active drawing tool
// from the gesture anchor to the given world point.
func (m *Machine) buildShape(wx, wy float64) shape.Shape {
	width := wx - m.startX
	height := wy - m.startY

	switch m.tool {
	case ToolRect:
		return &shape.Rect{ID: m.gestureID, X: m.startX, Y: m.startY, Width: width, Height: height}

	case ToolCircle:
		radius := abs(width)
		if abs(height) > radius {
			radius = abs(height)
		}
		radius /= 2
		return &shape.Circle{
			ID:      m.gestureID,
			CenterX: m.startX + width/2,
			CenterY: m.startY + height/2,
			Radius:  radius,
		}

	case ToolLine:
		return &shape.Line{ID: m.gestureID, StartX: m.startX, StartY: m.startY, EndX: wx, EndY: wy}

	default:
		return nil
	}
}

func (m *Machine) publishShape(s shape.Shape) {
	if m.publisher != nil {
		m.publisher.PublishShape(s)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
