// Package snapshot frames a room's shape list as lz4-compressed JSON for the
// HTTP bootstrap endpoint.
package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"log"

	"github.com/pierrec/lz4/v4"

	"sketchwire/internal/shape"
)

// Encode compresses a JSON array of discriminated shape payloads.
func Encode(shapes []json.RawMessage) ([]byte, error) {
	if shapes == nil {
		shapes = []json.RawMessage{}
	}
	data, err := json.Marshal(shapes)
	if err != nil {
		return nil, err
	}

	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write(data); err != nil {
		log.Println("could not compress snapshot:", err)
		return nil, err
	}
	if err := writer.Close(); err != nil {
		log.Println("could not close writer after compressing snapshot:", err)
		return nil, err
	}
	return compressed.Bytes(), nil
}

// Decode decompresses a snapshot and parses the shapes. Entries that don't
// decode are skipped rather than failing the whole bootstrap.
func Decode(data []byte) ([]shape.Shape, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var payloads []json.RawMessage
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, err
	}

	shapes := make([]shape.Shape, 0, len(payloads))
	for _, payload := range payloads {
		s, err := shape.Unmarshal(payload)
		if err != nil {
			log.Println("skipping undecodable snapshot shape:", err)
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
