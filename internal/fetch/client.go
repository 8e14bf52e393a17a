// Package fetch retrieves source documents over HTTP, with retries, latency
// stats and an optional shared cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"
)

var ErrTooLarge = errors.New("document exceeds size limit")

// Payload is a fetched document body.
type Payload struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// MediaType returns the content type without parameters.
func (p *Payload) MediaType() string {
	mt, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return p.ContentType
	}
	return mt
}

// Fetcher loads a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Payload, error)
}

// StatusError is a non-retryable, non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Client fetches documents over HTTP.
type Client struct {
	apiKey     string
	maxBytes   int64
	httpClient *http.Client
	stats      *Stats
	log        *slog.Logger
	backoff    func(int) time.Duration
}

func NewClient(timeout time.Duration, maxBytes int64, apiKey string, log *slog.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		maxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats:   NewStats(time.Hour, 0),
		log:     log,
		backoff: Backoff,
	}
}

// Stats returns the client's request tracker.
func (c *Client) Stats() *Stats { return c.stats }

// Fetch retrieves url, retrying 429 and 5xx responses.
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, error) {
	var p *Payload
	err := Retry(ctx, c.log, c.backoff, func() error {
		var err error
		p, err = c.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) (p *Payload, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	defer func() { c.stats.Record(time.Since(start), err) }()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(msg)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
	}
	return &Payload{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
