// Package summarizer asks an external ranking service to score the
// sentences of a document.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/fetch"
)

// Client calls the ranking service.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
	backoff    func(int) time.Duration
}

func NewClient(endpoint, apiKey string, log *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log:     log,
		backoff: fetch.Backoff,
	}
}

type rankSentence struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type rankRequest struct {
	URL       string         `json:"url"`
	Title     string         `json:"title,omitempty"`
	Sentences []rankSentence `json:"sentences"`
}

type rankResponse struct {
	Ranks map[string]doctree.Rank `json:"ranks"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Rank scores every sentence of doc and writes the ranks back into the
// tree. Sentences the service leaves out keep their current rank. It
// returns the number of sentences updated.
func (c *Client) Rank(ctx context.Context, doc *doctree.Document) (int, error) {
	req := rankRequest{URL: doc.URL, Title: doc.Title}
	byID := make(map[string]*doctree.Sentence)
	for _, sec := range doc.Sections {
		for _, p := range sec.Paragraphs {
			for _, s := range p.Sentences {
				req.Sentences = append(req.Sentences, rankSentence{ID: s.ID, Text: s.Text()})
				byID[s.ID] = s
			}
		}
	}
	if len(req.Sentences) == 0 {
		return 0, nil
	}
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	var ranks map[string]doctree.Rank
	err = fetch.Retry(ctx, c.log, c.backoff, func() error {
		var err error
		ranks, err = c.post(ctx, body)
		return err
	})
	if err != nil {
		return 0, err
	}

	applied := 0
	for id, r := range ranks {
		s, ok := byID[id]
		if !ok || !r.Valid {
			continue
		}
		s.Rank = r
		applied++
	}
	c.log.Info("sentences ranked", "url", doc.URL, "sentences", len(byID), "ranked", applied)
	return applied, nil
}

func (c *Client) post(ctx context.Context, body []byte) (map[string]doctree.Rank, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &fetch.RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarizer status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out rankResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("summarizer error: %s: %s", out.Error.Type, out.Error.Message)
	}
	return out.Ranks, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
