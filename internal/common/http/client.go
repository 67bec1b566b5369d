// internal/common/http/client.go

// Package http wraps the outbound HTTP client used for the intent model
// fallback. Callers build requests with context; the wrapper only pins the
// per-request timeout so a slow model service cannot stall a chat turn.
package http

import (
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do sends the request. Cancellation comes from the request's own context;
// the client timeout is the upper bound either way.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
