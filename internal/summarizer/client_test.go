package summarizer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() *doctree.Document {
	doc := &doctree.Document{
		URL: "https://example.com/a",
		Sections: []*doctree.Section{{
			Paragraphs: []*doctree.Paragraph{segment.Paragraph("First point. Second point. Third point.")},
		}},
	}
	doctree.AssignIDs(doc)
	return doc
}

func testClient(url string) *Client {
	c := NewClient(url, "key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestRank_AppliesReturnedRanks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req rankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Sentences, 3)
		assert.Equal(t, "s0", req.Sentences[0].ID)
		io.WriteString(w, `{"ranks":{"s0":0.9,"s2":"0.4","bogus":1,"s1":"n/a"}}`)
	}))
	defer srv.Close()

	doc := testDoc()
	n, err := testClient(srv.URL).Rank(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sents := doc.Sections[0].Paragraphs[0].Sentences
	assert.Equal(t, doctree.NewRank(0.9), sents[0].Rank)
	assert.False(t, sents[1].Rank.Valid)
	assert.Equal(t, doctree.NewRank(0.4), sents[2].Rank)
}

func TestRank_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"ranks":{"s1":0.5}}`)
	}))
	defer srv.Close()

	n, err := testClient(srv.URL).Rank(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRank_ClientErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Rank(context.Background(), testDoc())
	assert.ErrorContains(t, err, "status 400")
}

func TestRank_EmptyDocumentSkipsCall(t *testing.T) {
	n, err := testClient("http://127.0.0.1:1").Rank(context.Background(), &doctree.Document{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
