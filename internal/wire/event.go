// Package wire defines the JSON envelope both ends of the sync protocol
// speak.
package wire

// SocketEvent is one frame on the wire. MessageID is set on reliably
// delivered frames; the receiver echoes it back in an ack frame.
type SocketEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId,omitempty"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

const (
	EventJoinRoom        = "join_room"
	EventLeaveRoom       = "leave_room"
	EventShapeStream     = "shape_stream"
	EventAck             = "ack"
	EventConnectionReady = "connection_ready"
)
