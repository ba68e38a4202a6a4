package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxDownloadBytes caps remote payloads fetched by GetBytes.
const MaxDownloadBytes = 20 << 20

var client = &http.Client{Timeout: 12 * time.Second}

// GetBytes fetches url and returns the body. Non-2xx responses are errors.
func GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxDownloadBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, MaxDownloadBytes)
	}
	return b, nil
}
