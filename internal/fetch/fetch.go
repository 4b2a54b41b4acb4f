package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxTrackBytes caps a single download. Catalog entries are long mixes but
// anything past this is a misconfigured URL, not a track.
const MaxTrackBytes = 256 << 20

// Client downloads track bytes from catalog URLs. It is the only piece of
// the player that touches the network.
type Client struct {
	http *http.Client
}

// NewClient creates a download client.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Download fetches the resource at url and returns its bytes.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxTrackBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(data) > MaxTrackBytes {
		return nil, fmt.Errorf("fetch %s: track exceeds %d bytes", url, MaxTrackBytes)
	}
	return data, nil
}
