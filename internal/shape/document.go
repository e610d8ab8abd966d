package shape

import "sync"

// Document is the ordered shape collection backing one room view. Order is
// draw order: later entries render on top. Upsert keeps the slot of an
// existing id so duplicate delivery never reshuffles z-order.
type Document struct {
	mu     sync.RWMutex
	shapes []Shape
}

func NewDocument() *Document {
	return &Document{shapes: make([]Shape, 0)}
}

// Upsert replaces the shape with the same id in place, or appends when the id
// is new. Applying the same shape twice is a no-op beyond the first apply.
func (d *Document) Upsert(s Shape) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.shapes {
		if existing.ShapeID() == s.ShapeID() {
			d.shapes[i] = s
			return
		}
	}
	d.shapes = append(d.shapes, s)
}

func (d *Document) Get(id string) (Shape, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, s := range d.shapes {
		if s.ShapeID() == id {
			return s, true
		}
	}
	return nil, false
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.shapes)
}

// Shapes returns the shapes in draw order. The slice is a copy; the shapes
// themselves are shared.
func (d *Document) Shapes() []Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Shape, len(d.shapes))
	copy(out, d.shapes)
	return out
}
