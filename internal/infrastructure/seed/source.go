// Package seed loads the product transaction dataset from remote sources.
package seed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source fetches the raw dataset payload
type Source interface {
	// Fetch opens the dataset. The caller closes the returned reader.
	Fetch(ctx context.Context) (io.ReadCloser, error)
	// Describe names the source for logs
	Describe() string
}

// HTTPSource downloads the dataset with a plain GET request
type HTTPSource struct {
	client *http.Client
	url    string
}

// NewHTTPSource creates an HTTP source with the given request timeout
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return NewHTTPSourceWithClient(url, &http.Client{Timeout: timeout})
}

// NewHTTPSourceWithClient creates an HTTP source using an existing client
func NewHTTPSourceWithClient(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{client: client, url: url}
}

// Fetch performs the GET request. Non-2xx responses are errors.
func (s *HTTPSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Describe returns the source URL
func (s *HTTPSource) Describe() string {
	return s.url
}
