package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsMirror/internal/ports"
)

const defaultUserAgent = "NewsMirror/1.0"

// HTTPFetcher performs a single GET and returns the body as text.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.TextFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; a nil client gets a 30s timeout.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// FetchText requests url and fails on any non-2xx status.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
