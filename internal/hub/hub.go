// Package hub is the server core of the sync engine: the connection
// registry, the room broadcast router and the reliable delivery bookkeeping.
// All room and connection state is mutated on a single event loop, so
// handlers never interleave and need no locking.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sketchwire/internal/auth"
	"sketchwire/internal/config"
	"sketchwire/internal/shape"
	"sketchwire/internal/store"
	"sketchwire/internal/wire"
)

var (
	websocketUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	ErrUnknownEvent = errors.New("unknown event type")
)

type EventHandler func(event wire.SocketEvent, c *Client) error

type clientRequest struct {
	client *Client
	event  wire.SocketEvent
}

type Hub struct {
	cfg      *config.Config
	store    store.Store
	ctx      context.Context
	handlers map[string]EventHandler

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	requests   chan clientRequest
	done       chan struct{}
}

func New(cfg *config.Config, st store.Store) *Hub {
	h := &Hub{
		cfg:        cfg,
		store:      st,
		ctx:        context.Background(),
		handlers:   make(map[string]EventHandler),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan clientRequest, 1),
		done:       make(chan struct{}),
	}
	h.setupEventHandlers()
	return h
}

// Run drains registration, inbound events and the retry sweep on one
// goroutine until ctx is cancelled. Each inbound message is processed to
// completion before the next, so a disconnect cleanup and a join for the
// same room can never interleave.
func (h *Hub) Run(ctx context.Context) {
	sweep := time.NewTicker(h.cfg.AckTimeout / 2)
	defer sweep.Stop()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case request := <-h.requests:
			if err := h.routeEvent(request.event, request.client); err != nil {
				log.Println("dropping event:", err)
			}
		case <-sweep.C:
			h.sweepPending(time.Now())
		case <-ctx.Done():
			for client := range h.clients {
				h.removeClient(client)
			}
			return
		}
	}
}

func (h *Hub) routeEvent(event wire.SocketEvent, c *Client) error {
	if !h.clients[c] {
		// Connection closed while the event sat in the queue.
		return nil
	}
	handler, ok := h.handlers[event.Type]
	if !ok {
		return ErrUnknownEvent
	}
	return handler(event, c)
}

func (h *Hub) setupEventHandlers() {
	h.handlers[wire.EventJoinRoom] = func(e wire.SocketEvent, c *Client) error {
		if e.RoomID == "" {
			return nil
		}
		if !c.claims.CanJoin(e.RoomID) {
			// Guest scoped to another room: ignore, keep the connection.
			log.Printf("connection %s not allowed to join room %s", c.id, e.RoomID)
			return nil
		}
		c.rooms[e.RoomID] = struct{}{}
		return nil
	}

	h.handlers[wire.EventLeaveRoom] = func(e wire.SocketEvent, c *Client) error {
		if _, ok := c.rooms[e.RoomID]; !ok {
			return nil
		}
		delete(c.rooms, e.RoomID)
		h.cleanupRoom(e.RoomID)
		return nil
	}

	h.handlers[wire.EventShapeStream] = func(e wire.SocketEvent, c *Client) error {
		if e.RoomID == "" || !c.claims.CanJoin(e.RoomID) {
			return nil
		}
		h.publish(e.RoomID, e.Message, c.claims)
		return nil
	}

	h.handlers[wire.EventAck] = func(e wire.SocketEvent, c *Client) error {
		// Unmatched and duplicate acks are fine.
		delete(c.pending, e.MessageID)
		return nil
	}
}

// publish validates a shape envelope, persists it best-effort and fans it
// out reliably to every member of the room, the originator included. The
// echo is absorbed by the client's idempotent upsert.
func (h *Hub) publish(roomID, message string, origin *auth.Claims) {
	s, err := shape.DecodeStream(message)
	if err != nil {
		// Fail closed: nothing persisted, nothing broadcast.
		log.Println("dropping malformed shape payload:", err)
		return
	}

	shapeJSON, err := shape.Marshal(s)
	if err != nil {
		log.Println("could not re-encode shape:", err)
		return
	}
	owner := ""
	if origin.Kind == auth.KindAccess {
		owner = origin.Subject
	}
	if err := h.store.AppendShape(h.ctx, roomID, owner, shapeJSON); err != nil {
		// Availability over durability: the broadcast still goes out.
		log.Println("could not persist shape:", err)
	}

	event := wire.SocketEvent{Type: wire.EventShapeStream, RoomID: roomID, Message: message}
	for client := range h.clients {
		if _, ok := client.rooms[roomID]; ok {
			h.sendReliable(client, event)
		}
	}
}

// sendReliable assigns the event a message id, records it as pending and
// transmits. The entry stays until a matching ack arrives or the retry
// budget is exhausted.
func (h *Hub) sendReliable(c *Client, event wire.SocketEvent) {
	event.MessageID = uuid.NewString()
	payload, err := json.Marshal(event)
	if err != nil {
		log.Println("could not marshal socket event:", err)
		return
	}
	c.pending[event.MessageID] = &pendingAck{payload: payload, sentAt: time.Now()}
	h.transmit(c, payload)
}

// sweepPending retransmits every pending entry older than the ack timeout,
// identical payload each time, and abandons entries that have used up their
// retries. Clients that closed since the last tick are gone from the
// registry already.
func (h *Hub) sweepPending(now time.Time) {
	for client := range h.clients {
		for id, entry := range client.pending {
			if now.Sub(entry.sentAt) < h.cfg.AckTimeout {
				continue
			}
			if entry.retries < h.cfg.MaxRetries {
				entry.retries++
				entry.sentAt = now
				h.transmit(client, entry.payload)
			} else {
				delete(client.pending, id)
				log.Printf("giving up on message %s to connection %s after %d attempts",
					id, client.id, entry.retries+1)
			}
		}
	}
}

// transmit hands a frame to the client's write pump without blocking the
// event loop. A full buffer just drops the frame; the retry sweep covers
// reliable traffic.
func (h *Hub) transmit(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		log.Printf("send buffer full, dropping frame for connection %s", c.id)
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = true
	log.Println("Nr clients:", len(h.clients))

	ready, err := json.Marshal(wire.SocketEvent{Type: wire.EventConnectionReady, Message: c.id})
	if err != nil {
		return
	}
	h.transmit(c, ready)
}

func (h *Hub) removeClient(c *Client) {
	if !h.clients[c] {
		return
	}
	c.connection.Close()
	close(c.send)
	delete(h.clients, c)

	for roomID := range c.rooms {
		h.cleanupRoom(roomID)
	}
	log.Println("Nr clients:", len(h.clients))
}

// cleanupRoom deletes an ephemeral room and its persisted shapes once its
// membership reaches zero. Rooms without a stored record are left alone so a
// missing record can never cascade into data loss.
func (h *Hub) cleanupRoom(roomID string) {
	for client := range h.clients {
		if _, ok := client.rooms[roomID]; ok {
			return
		}
	}

	room, err := h.store.GetRoom(h.ctx, roomID)
	if err != nil {
		if !errors.Is(err, store.ErrRoomNotFound) {
			log.Println("could not look up room for cleanup:", err)
		}
		return
	}
	if !room.Ephemeral {
		return
	}

	if err := h.store.DeleteShapes(h.ctx, roomID); err != nil {
		log.Println("could not delete shapes of empty room:", err)
	}
	if err := h.store.DeleteRoom(h.ctx, roomID); err != nil {
		log.Println("could not delete empty room:", err)
	}
	log.Println("deleted empty ephemeral room", roomID)
}

// ServeWS upgrades the request, validates the bearer token from the query
// string and registers the connection. A bad token closes the socket
// immediately; there is no retry.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Could not upgrade request:", err)
		return
	}

	if len(h.cfg.JWTSecret) == 0 {
		conn.Close()
		return
	}
	claims, err := auth.Verify(h.cfg.JWTSecret, r.URL.Query().Get("token"))
	if err != nil {
		log.Println("rejecting connection:", err)
		conn.Close()
		return
	}

	client := newClient(conn, h, claims)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}
