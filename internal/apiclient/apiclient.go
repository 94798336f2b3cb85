// Package apiclient wraps the board server's narrow HTTP surface: thread
// refresh, post reporting, theme mirroring and quick-reply submission.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// APIClient handles all one-shot HTTP communication with the board server.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client rooted at the server's base URL.
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{},
	}
}

// do is the single, unified helper for making API requests. Failed requests
// are not retried; retry policy exists only on the realtime channel.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server unavailable: %w", err)
	}
	return resp, nil
}
