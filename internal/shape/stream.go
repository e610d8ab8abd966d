package shape

import (
	"encoding/json"
	"errors"
)

var ErrEmptyPayload = errors.New("stream payload has no shape")

// The shape_stream message field carries a JSON string of the form
// {"shape": {...}}.
type streamPayload struct {
	Shape json.RawMessage `json:"shape"`
}

// EncodeStream wraps a shape into a shape_stream message payload.
func EncodeStream(s Shape) (string, error) {
	raw, err := Marshal(s)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(streamPayload{Shape: raw})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// DecodeStream parses a shape_stream message payload back into a shape.
// Anything malformed comes back as an error so callers can drop it without
// persisting or broadcasting.
func DecodeStream(message string) (Shape, error) {
	var payload streamPayload
	if err := json.Unmarshal([]byte(message), &payload); err != nil {
		return nil, err
	}
	if len(payload.Shape) == 0 {
		return nil, ErrEmptyPayload
	}
	return Unmarshal(payload.Shape)
}
