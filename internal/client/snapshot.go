package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"sketchwire/internal/shape"
	"sketchwire/internal/snapshot"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

func fetchSnapshot(ctx context.Context, url string) ([]shape.Shape, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}

	compressed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(compressed)
}
