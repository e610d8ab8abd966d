// Package shape holds the vector shape model shared by the canvas engine and
// the sync protocol: a tagged union of drawable primitives and the ordered,
// id-keyed document they live in.
package shape

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Shape kinds as they appear in the wire discriminator.
const (
	KindRect   = "rect"
	KindCircle = "circle"
	KindLine   = "line"
	KindPencil = "pencil"
)

var (
	ErrMissingID   = errors.New("shape has no id")
	ErrMissingType = errors.New("shape has no type")
)

// Point is one freehand path coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one drawable primitive. The id is assigned at creation and never
// changes afterwards.
type Shape interface {
	Kind() string
	ShapeID() string
}

type Rect struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r *Rect) Kind() string    { return KindRect }
func (r *Rect) ShapeID() string { return r.ID }

type Circle struct {
	ID      string  `json:"id"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

func (c *Circle) Kind() string    { return KindCircle }
func (c *Circle) ShapeID() string { return c.ID }

type Line struct {
	ID     string  `json:"id"`
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

func (l *Line) Kind() string    { return KindLine }
func (l *Line) ShapeID() string { return l.ID }

type Pencil struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
}

func (p *Pencil) Kind() string    { return KindPencil }
func (p *Pencil) ShapeID() string { return p.ID }

func (r *Rect) MarshalJSON() ([]byte, error) {
	type alias Rect
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{KindRect, (*alias)(r)})
}

func (c *Circle) MarshalJSON() ([]byte, error) {
	type alias Circle
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{KindCircle, (*alias)(c)})
}

func (l *Line) MarshalJSON() ([]byte, error) {
	type alias Line
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{KindLine, (*alias)(l)})
}

func (p *Pencil) MarshalJSON() ([]byte, error) {
	type alias Pencil
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{KindPencil, (*alias)(p)})
}

// Marshal encodes a shape with its type discriminator.
func Marshal(s Shape) ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal decodes a shape by its type discriminator. Payloads with an
// unknown type or without an id are rejected.
func Unmarshal(data []byte) (Shape, error) {
	var head struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Type == "" {
		return nil, ErrMissingType
	}
	if head.ID == "" {
		return nil, ErrMissingID
	}

	switch head.Type {
	case KindRect:
		var r Rect
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		return &r, nil
	case KindCircle:
		var c Circle
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case KindLine:
		var l Line
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		return &l, nil
	case KindPencil:
		var p Pencil
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", head.Type)
	}
}
