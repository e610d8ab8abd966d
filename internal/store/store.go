// Package store is the persistence boundary of the sync server: room records
// and the append-only shape log, with a redis-backed implementation for
// deployment and an in-memory one for tests.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrRoomNotFound is returned when a room record doesn't exist.
var ErrRoomNotFound = errors.New("room not found")

// Room is one room record. Ephemeral rooms are deleted, along with their
// shape log, once their last connection leaves. Owner may be empty: guest
// rooms have no owning user.
type Room struct {
	ID        string `json:"id"`
	Owner     string `json:"owner,omitempty"`
	Ephemeral bool   `json:"ephemeral"`
}

// LogEntry is one appended shape. Owner may be empty for guest-originated
// shapes; Shape is the discriminated shape JSON.
type LogEntry struct {
	Owner string          `json:"owner,omitempty"`
	Shape json.RawMessage `json:"shape"`
}

// Store is the persistence interface the broadcast router and the HTTP
// surface talk to.
type Store interface {
	CreateRoom(ctx context.Context, room Room) error
	// GetRoom returns ErrRoomNotFound when no record exists.
	GetRoom(ctx context.Context, roomID string) (Room, error)
	DeleteRoom(ctx context.Context, roomID string) error

	// AppendShape appends discriminated shape JSON to a room's log.
	AppendShape(ctx context.Context, roomID, owner string, shapeJSON []byte) error
	// ListShapes returns the log in append order.
	ListShapes(ctx context.Context, roomID string) ([]LogEntry, error)
	DeleteShapes(ctx context.Context, roomID string) error
}
