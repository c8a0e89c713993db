// Package fetch retrieves linked pages to supplement prompt context.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher performs bounded HTTP GETs. Responses are truncated to maxBytes so
// a linked page can never blow up the prompt.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a fetcher with the given timeout and response size cap.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 256 * 1024
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Text fetches url and returns up to maxBytes of its body as UTF-8 text.
func (f *Fetcher) Text(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("link returned %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read link body: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
