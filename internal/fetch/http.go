package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 600 * time.Second

// HTTPFetcher downloads archive-hosted products over plain HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with the given per-request timeout.
// A non-positive timeout falls back to the default (10 minutes — product
// files can run to hundreds of megabytes).
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, source, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("request %s: %w", source, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: HTTP %s", source, resp.Status)
	}

	return writeAtomic(dest, resp.Body)
}
