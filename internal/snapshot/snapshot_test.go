package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchwire/internal/shape"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rect, err := shape.Marshal(&shape.Rect{ID: "a", X: 1, Y: 2, Width: 3, Height: 4})
	require.NoError(t, err)
	pencil, err := shape.Marshal(&shape.Pencil{ID: "b", Points: []shape.Point{{X: 0, Y: 0}}})
	require.NoError(t, err)

	data, err := Encode([]json.RawMessage{rect, pencil})
	require.NoError(t, err)

	shapes, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.Equal(t, "a", shapes[0].ShapeID())
	assert.Equal(t, "b", shapes[1].ShapeID())
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)

	shapes, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, shapes)
}

func TestDecodeSkipsBadEntries(t *testing.T) {
	data, err := Encode([]json.RawMessage{
		json.RawMessage(`{"type":"hexagon","id":"x"}`),
		json.RawMessage(`{"type":"circle","id":"c","centerX":1,"centerY":2,"radius":3}`),
	})
	require.NoError(t, err)

	shapes, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "c", shapes[0].ShapeID())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("definitely not lz4"))
	assert.Error(t, err)
}
