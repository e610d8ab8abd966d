package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchwire/internal/shape"
	"sketchwire/internal/view"
)

type recordingPublisher struct {
	published []shape.Shape
}

func (r *recordingPublisher) PublishShape(s shape.Shape) {
	r.published = append(r.published, s)
}

func newTestMachine() (*Machine, *shape.Document, *recordingPublisher) {
	doc := shape.NewDocument()
	pub := &recordingPublisher{}
	m := NewMachine(doc, view.NewTransform(), pub, nil)
	return m, doc, pub
}

func TestDrawRectPublishesOnce(t *testing.T) {
	m, doc, pub := newTestMachine()
	m.SetTool(ToolRect)

	m.PointerDown(10, 10)
	m.PointerMove(30, 20)
	m.PointerMove(50, 40)
	m.PointerUp(60, 50)

	require.Equal(t, 1, doc.Len())
	require.Len(t, pub.published, 1)

	r, ok := pub.published[0].(*shape.Rect)
	require.True(t, ok)
	assert.Equal(t, 10.0, r.X)
	assert.Equal(t, 10.0, r.Y)
	assert.Equal(t, 50.0, r.Width)
	assert.Equal(t, 40.0, r.Height)
	assert.NotEmpty(t, r.ID)
}

func TestDrawCircleGeometry(t *testing.T) {
	m, _, pub := newTestMachine()
	m.SetTool(ToolCircle)

	m.PointerDown(0, 0)
	m.PointerUp(20, 10)

	require.Len(t, pub.published, 1)
	c, ok := pub.published[0].(*shape.Circle)
	require.True(t, ok)
	assert.Equal(t, 10.0, c.CenterX)
	assert.Equal(t, 5.0, c.CenterY)
	assert.Equal(t, 10.0, c.Radius)
}

func TestPencilSeedsOnDownAndRateLimitsPublishes(t *testing.T) {
	m, doc, pub := newTestMachine()
	m.SetTool(ToolPencil)

	m.PointerDown(0, 0)
	require.Equal(t, 1, doc.Len(), "pencil is appended on pointer down")

	// 14 moves: 15 points total, published at points 5, 10 and 15.
	for i := 1; i <= 14; i++ {
		m.PointerMove(float64(i), 0)
	}
	assert.Len(t, pub.published, 3)

	m.PointerUp(14, 0)
	assert.Len(t, pub.published, 4, "one final publish on pointer up")

	p, ok := pub.published[len(pub.published)-1].(*shape.Pencil)
	require.True(t, ok)
	assert.Len(t, p.Points, 15)
	assert.Equal(t, 1, doc.Len())
}

func TestPanningMovesViewportAndNeverPublishes(t *testing.T) {
	doc := shape.NewDocument()
	pub := &recordingPublisher{}
	v := view.NewTransform()
	m := NewMachine(doc, v, pub, nil)
	// No tool selected: gestures pan.

	m.PointerDown(100, 100)
	m.PointerMove(130, 90)
	m.PointerMove(150, 80)
	m.PointerUp(150, 80)

	assert.Equal(t, 50.0, v.X)
	assert.Equal(t, -20.0, v.Y)
	assert.Empty(t, pub.published)
	assert.Equal(t, 0, doc.Len())
}

func TestDrawingRespectsViewportTransform(t *testing.T) {
	doc := shape.NewDocument()
	v := &view.Transform{X: 100, Y: 50, Scale: 2}
	pub := &recordingPublisher{}
	m := NewMachine(doc, v, pub, nil)
	m.SetTool(ToolRect)

	m.PointerDown(100, 50) // world (0, 0)
	m.PointerUp(120, 70)   // world (10, 10)

	require.Len(t, pub.published, 1)
	r := pub.published[0].(*shape.Rect)
	assert.Equal(t, 0.0, r.X)
	assert.Equal(t, 0.0, r.Y)
	assert.Equal(t, 10.0, r.Width)
	assert.Equal(t, 10.0, r.Height)
}

func TestPointerLeaveCancelsDrawing(t *testing.T) {
	m, doc, pub := newTestMachine()
	m.SetTool(ToolRect)

	m.PointerDown(0, 0)
	m.PointerMove(50, 50)
	m.PointerLeave()

	assert.Empty(t, pub.published)
	assert.Equal(t, 0, doc.Len())

	// The machine is idle again: a later pointer up must not publish.
	m.PointerUp(60, 60)
	assert.Empty(t, pub.published)
}

func TestPointerLeaveStopsPanning(t *testing.T) {
	doc := shape.NewDocument()
	v := view.NewTransform()
	m := NewMachine(doc, v, &recordingPublisher{}, nil)

	m.PointerDown(0, 0)
	m.PointerMove(10, 10)
	m.PointerLeave()
	m.PointerMove(100, 100)

	assert.Equal(t, 10.0, v.X)
	assert.Equal(t, 10.0, v.Y)
}

func TestToolPersistsAcrossGestures(t *testing.T) {
	m, doc, _ := newTestMachine()
	m.SetTool(ToolLine)

	m.PointerDown(0, 0)
	m.PointerUp(10, 10)
	m.PointerDown(20, 20)
	m.PointerUp(30, 30)

	assert.Equal(t, ToolLine, m.CurrentTool())
	assert.Equal(t, 2, doc.Len())
}

func TestSelectionDragThroughMachine(t *testing.T) {
	m, doc, pub := newTestMachine()
	r := &shape.Rect{ID: "s1", X: 0, Y: 0, Width: 20, Height: 20}
	doc.Upsert(r)
	m.SetTool(ToolSelection)

	m.PointerDown(10, 10)
	require.True(t, m.Selection().Dragging())
	m.PointerMove(40, 40)
	m.PointerUp(40, 40)

	assert.Equal(t, 30.0, r.X)
	assert.Equal(t, 30.0, r.Y)
	assert.Len(t, pub.published, 1)
	assert.Same(t, r, pub.published[0])
}

func TestSelectionResizeThroughMachine(t *testing.T) {
	m, doc, pub := newTestMachine()
	r := &shape.Rect{ID: "s1", X: 0, Y: 0, Width: 10, Height: 10}
	doc.Upsert(r)
	m.SetTool(ToolSelection)

	// First click selects.
	m.PointerDown(5, 5)
	m.PointerUp(5, 5)
	require.Same(t, r, m.Selection().Selected())

	// Second gesture grabs the bottom-right handle.
	m.PointerDown(10, 10)
	require.True(t, m.Selection().Resizing())
	m.PointerMove(20, 20)
	m.PointerUp(20, 20)

	assert.Equal(t, 20.0, r.Width)
	assert.Equal(t, 20.0, r.Height)
	assert.Len(t, pub.published, 2)
}

func TestClickOnEmptySpaceClearsSelection(t *testing.T) {
	m, doc, _ := newTestMachine()
	r := &shape.Rect{ID: "s1", X: 0, Y: 0, Width: 10, Height: 10}
	doc.Upsert(r)
	m.SetTool(ToolSelection)

	m.PointerDown(5, 5)
	m.PointerUp(5, 5)
	require.NotNil(t, m.Selection().Selected())

	m.PointerDown(200, 200)
	m.PointerUp(200, 200)
	assert.Nil(t, m.Selection().Selected())
}
