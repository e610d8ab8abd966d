// Package client is the sync adapter the canvas engine publishes through: it
// holds the websocket session, joins rooms, acknowledges reliable frames and
// folds remote shapes into the local document.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"sketchwire/internal/shape"
	"sketchwire/internal/wire"
)

// Sync is one client session. Reads happen on an internal goroutine; writes
// are serialized with a mutex so gesture publishes and acks don't interleave
// frames.
type Sync struct {
	conn *websocket.Conn
	doc  *shape.Document

	// OnShape, if set, runs after a remote shape was upserted. Repaint hooks
	// go here.
	OnShape func(s shape.Shape)

	writeMu sync.Mutex

	mu           sync.Mutex
	connectionID string
	closed       bool

	ready chan struct{}
}

// Dial connects to the sync server with a bearer token and starts the read
// loop. The document receives every shape the server streams for the rooms
// this session joins.
func Dial(ctx context.Context, wsURL, token string, doc *shape.Document) (*Sync, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	s := &Sync{
		conn:  conn,
		doc:   doc,
		ready: make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// WaitReady blocks until the connection_ready handshake arrives and returns
// the connection id the server assigned.
func (s *Sync) WaitReady(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.connectionID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Sync) readLoop() {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var event wire.SocketEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("dropping malformed frame:", err)
			continue
		}

		switch event.Type {
		case wire.EventConnectionReady:
			s.mu.Lock()
			if s.connectionID == "" {
				s.connectionID = event.Message
				close(s.ready)
			}
			s.mu.Unlock()

		case wire.EventShapeStream:
			// Ack first: delivery bookkeeping doesn't care whether the
			// payload decodes.
			if event.MessageID != "" {
				s.writeEvent(wire.SocketEvent{Type: wire.EventAck, MessageID: event.MessageID})
			}
			remote, err := shape.DecodeStream(event.Message)
			if err != nil {
				log.Println("dropping malformed shape payload:", err)
				continue
			}
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				// Session torn down: stale delivery, not an error.
				continue
			}
			s.doc.Upsert(remote)
			if s.OnShape != nil {
				s.OnShape(remote)
			}
		}
	}
}

func (s *Sync) writeEvent(event wire.SocketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Sync) Join(roomID string) error {
	return s.writeEvent(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: roomID})
}

func (s *Sync) Leave(roomID string) error {
	return s.writeEvent(wire.SocketEvent{Type: wire.EventLeaveRoom, RoomID: roomID})
}

// Publish sends one shape envelope to a room. The server echoes it back to
// this session too; the document's upsert absorbs the duplicate.
func (s *Sync) Publish(roomID string, sh shape.Shape) error {
	message, err := shape.EncodeStream(sh)
	if err != nil {
		return err
	}
	return s.writeEvent(wire.SocketEvent{Type: wire.EventShapeStream, RoomID: roomID, Message: message})
}

// Close tears the session down. Frames still in flight are discarded.
func (s *Sync) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

// Room binds this session to one room as a gesture publisher.
func (s *Sync) Room(roomID string) *RoomPublisher {
	return &RoomPublisher{sync: s, roomID: roomID}
}

// RoomPublisher satisfies the engine's publisher interface for one room.
type RoomPublisher struct {
	sync   *Sync
	roomID string
}

func (p *RoomPublisher) PublishShape(sh shape.Shape) {
	if err := p.sync.Publish(p.roomID, sh); err != nil {
		log.Printf("could not publish shape %s: %v", sh.ShapeID(), err)
	}
}

// FetchSnapshot loads a room's persisted shapes over HTTP. The response is
// an lz4-compressed JSON array.
func FetchSnapshot(ctx context.Context, httpBase, roomID string) ([]shape.Shape, error) {
	return fetchSnapshot(ctx, fmt.Sprintf("%s/rooms/%s/shapes", httpBase, roomID))
}
