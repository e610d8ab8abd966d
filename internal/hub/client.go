package hub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sketchwire/internal/auth"
	"sketchwire/internal/wire"
)

// pendingAck is one reliably-sent message awaiting acknowledgment.
type pendingAck struct {
	payload []byte
	sentAt  time.Time
	retries int
}

// Client is one live connection. rooms and pending are only ever touched on
// the hub's event loop, so they need no locking.
type Client struct {
	id         string
	claims     *auth.Claims
	connection *websocket.Conn
	hub        *Hub
	send       chan []byte
	rooms      map[string]struct{}
	pending    map[string]*pendingAck
}

func newClient(conn *websocket.Conn, h *Hub, claims *auth.Claims) *Client {
	return &Client{
		id:         uuid.NewString(),
		claims:     claims,
		connection: conn,
		hub:        h,
		send:       make(chan []byte, h.cfg.SendBuffer),
		rooms:      make(map[string]struct{}),
		pending:    make(map[string]*pendingAck),
	}
}

// ID returns the connection id announced in the connection_ready handshake.
func (c *Client) ID() string { return c.id }

// https://github.com/gorilla/websocket/blob/main/examples/chat/client.go
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.connection.Close()
	}()

	c.connection.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.connection.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
	c.connection.SetPongHandler(func(string) error {
		c.connection.SetReadDeadline(time.Now().Add(c.hub.cfg.ReadTimeout))
		return nil
	})

	for {
		_, payload, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("Error reading message:", err)
			}
			break
		}

		var event wire.SocketEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			// Malformed frame: drop it, keep the connection.
			log.Println("error unmarshalling message:", err)
			continue
		}
		select {
		case c.hub.requests <- clientRequest{client: c, event: event}:
		case <-c.hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.connection.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.connection.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel.
				c.connection.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.connection.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Println("could not write message to client:", err)
				return
			}
		case <-ticker.C:
			c.connection.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
