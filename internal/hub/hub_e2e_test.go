package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchwire/internal/auth"
	"sketchwire/internal/shape"
	"sketchwire/internal/store"
	"sketchwire/internal/wire"
)

// testConn wraps a raw websocket connection for talking to a running hub.
type testConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialHub(t *testing.T, server *httptest.Server, token string) *testConn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tc := &testConn{t: t, conn: conn}
	ready := tc.readEvent()
	require.Equal(t, wire.EventConnectionReady, ready.Type)
	return tc
}

func (tc *testConn) send(event wire.SocketEvent) {
	tc.t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(tc.t, err)
	require.NoError(tc.t, tc.conn.WriteMessage(websocket.TextMessage, payload))
}

func (tc *testConn) readEvent() wire.SocketEvent {
	tc.t.Helper()
	require.NoError(tc.t, tc.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := tc.conn.ReadMessage()
	require.NoError(tc.t, err)
	var event wire.SocketEvent
	require.NoError(tc.t, json.Unmarshal(payload, &event))
	return event
}

// expectSilence fails if any frame arrives within the grace window.
func (tc *testConn) expectSilence(grace time.Duration) {
	tc.t.Helper()
	require.NoError(tc.t, tc.conn.SetReadDeadline(time.Now().Add(grace)))
	_, payload, err := tc.conn.ReadMessage()
	if err == nil {
		tc.t.Fatalf("expected no frame, got %s", payload)
	}
}

func startHub(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	h := New(testConfig(), st)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(server.Close)
	return server
}

func TestBroadcastBetweenTwoConnections(t *testing.T) {
	cfg := testConfig()
	server := startHub(t, store.NewMemoryStore())

	tokenA, err := auth.Sign(cfg.JWTSecret, "alice", time.Hour)
	require.NoError(t, err)
	tokenB, err := auth.Sign(cfg.JWTSecret, "bob", time.Hour)
	require.NoError(t, err)

	a := dialHub(t, server, tokenA)
	b := dialHub(t, server, tokenB)
	a.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r1"})
	b.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r1"})

	sent := &shape.Rect{ID: "s1", X: 10, Y: 10, Width: 50, Height: 40}
	message, err := shape.EncodeStream(sent)
	require.NoError(t, err)
	a.send(wire.SocketEvent{Type: wire.EventShapeStream, RoomID: "r1", Message: message})

	for _, member := range []*testConn{a, b} {
		event := member.readEvent()
		assert.Equal(t, wire.EventShapeStream, event.Type)
		assert.Equal(t, "r1", event.RoomID)
		require.NotEmpty(t, event.MessageID)
		member.send(wire.SocketEvent{Type: wire.EventAck, MessageID: event.MessageID})

		received, err := shape.DecodeStream(event.Message)
		require.NoError(t, err)
		assert.Equal(t, sent, received)
	}
}

func TestGuestOutsideScopeReceivesNothing(t *testing.T) {
	cfg := testConfig()
	server := startHub(t, store.NewMemoryStore())

	tokenA, err := auth.Sign(cfg.JWTSecret, "alice", time.Hour)
	require.NoError(t, err)
	guestToken, err := auth.SignGuest(cfg.JWTSecret, "guest:g1", "r2", time.Hour)
	require.NoError(t, err)

	a := dialHub(t, server, tokenA)
	g := dialHub(t, server, guestToken)

	a.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r3"})
	g.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r3"})

	message, err := shape.EncodeStream(&shape.Line{ID: "l1", EndX: 5, EndY: 5})
	require.NoError(t, err)
	a.send(wire.SocketEvent{Type: wire.EventShapeStream, RoomID: "r3", Message: message})

	event := a.readEvent()
	assert.Equal(t, wire.EventShapeStream, event.Type)
	a.send(wire.SocketEvent{Type: wire.EventAck, MessageID: event.MessageID})

	g.expectSilence(150 * time.Millisecond)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	server := startHub(t, store.NewMemoryStore())

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=garbage"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "upgrade succeeds before the token check")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server closes the socket without a ready frame")
}

func TestDisconnectCleansUpEmptyEphemeralRoom(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	st := store.NewMemoryStore()
	server := startHub(t, st)
	require.NoError(t, st.CreateRoom(ctx, store.Room{ID: "r1", Ephemeral: true}))

	token, err := auth.SignGuest(cfg.JWTSecret, "guest:g1", "r1", time.Hour)
	require.NoError(t, err)
	g := dialHub(t, server, token)
	g.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r1"})

	message, err := shape.EncodeStream(&shape.Rect{ID: "s1", Width: 1, Height: 1})
	require.NoError(t, err)
	g.send(wire.SocketEvent{Type: wire.EventShapeStream, RoomID: "r1", Message: message})
	g.readEvent() // the echo proves the join and publish were processed

	g.conn.Close()

	require.Eventually(t, func() bool {
		_, err := st.GetRoom(ctx, "r1")
		return errors.Is(err, store.ErrRoomNotFound)
	}, 2*time.Second, 20*time.Millisecond, "room deleted once its last member disconnects")

	entries, err := st.ListShapes(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRetransmitUntilAcked(t *testing.T) {
	cfg := testConfig()
	server := startHub(t, store.NewMemoryStore())

	token, err := auth.Sign(cfg.JWTSecret, "alice", time.Hour)
	require.NoError(t, err)
	a := dialHub(t, server, token)
	a.send(wire.SocketEvent{Type: wire.EventJoinRoom, RoomID: "r1"})

	message, err := shape.EncodeStream(&shape.Circle{ID: "c1", Radius: 2})
	require.NoError(t, err)
	a.send(wire.SocketEvent{Type: wire.EventShapeStream, RoomID: "r1", Message: message})

	// Withhold the ack: the same message id comes around again.
	first := a.readEvent()
	second := a.readEvent()
	assert.Equal(t, first.MessageID, second.MessageID)
	assert.Equal(t, first.Message, second.Message)

	a.send(wire.SocketEvent{Type: wire.EventAck, MessageID: first.MessageID})

	// Retransmissions already in flight may still arrive; anything else is a
	// failure, and the stream must go quiet once the ack lands.
	for {
		require.NoError(t, a.conn.SetReadDeadline(time.Now().Add(3*cfg.AckTimeout)))
		_, payload, err := a.conn.ReadMessage()
		if err != nil {
			break
		}
		var event wire.SocketEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, first.MessageID, event.MessageID)
	}
}
