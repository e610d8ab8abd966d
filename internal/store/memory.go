package store

import (
	"context"
	"sync"
)

// MemoryStore implements Store with in-process maps. Used by tests and for
// running the server without redis.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]Room
	logs  map[string][]LogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]Room),
		logs:  make(map[string][]LogEntry),
	}
}

func (m *MemoryStore) CreateRoom(_ context.Context, room Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	return nil
}

func (m *MemoryStore) GetRoom(_ context.Context, roomID string) (Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (m *MemoryStore) DeleteRoom(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}

func (m *MemoryStore) AppendShape(_ context.Context, roomID, owner string, shapeJSON []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := make([]byte, len(shapeJSON))
	copy(data, shapeJSON)
	m.logs[roomID] = append(m.logs[roomID], LogEntry{Owner: owner, Shape: data})
	return nil
}

func (m *MemoryStore) ListShapes(_ context.Context, roomID string) ([]LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.logs[roomID]
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *MemoryStore) DeleteShapes(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, roomID)
	return nil
}
