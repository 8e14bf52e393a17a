// Package library keeps loaded documents in memory, keyed by URL, together
// with their token stream and rank table.
package library

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/rank"
)

// Entry is one loaded document. Entries are immutable once stored; a
// reload replaces the entry.
type Entry struct {
	Doc         *doctree.Document
	Stream      *doctree.Stream
	Table       *rank.Table
	ContentHash string
	LoadedAt    time.Time
}

// NewEntry builds the derived views of doc. hash may be empty.
func NewEntry(doc *doctree.Document, hash string) *Entry {
	return &Entry{
		Doc:         doc,
		Stream:      doctree.NewStream(doc),
		Table:       rank.Build(RankInputs(doc)),
		ContentHash: hash,
		LoadedAt:    time.Now(),
	}
}

// RankInputs lists the document's sentences in the form the rank table
// consumes.
func RankInputs(doc *doctree.Document) []rank.Sentence {
	srs := doc.Sentences()
	out := make([]rank.Sentence, len(srs))
	for i, sr := range srs {
		out[i] = rank.Sentence{ID: sr.ID, Rank: sr.Rank.Ptr()}
	}
	return out
}

// Library is a thread-safe in-memory document registry with TTL eviction.
type Library struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(ttl time.Duration) *Library {
	return &Library{
		entries: make(map[string]*Entry),
		ttl:     ttl,
	}
}

// Key normalizes a document URL; the fragment is ignored.
func Key(url string) string {
	url, _, _ = strings.Cut(url, "#")
	return url
}

// Put stores e under its document URL, replacing any previous entry. It
// reports whether the content differs from the entry it replaced.
func (l *Library) Put(e *Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := Key(e.Doc.URL)
	prev, ok := l.entries[key]
	l.entries[key] = e
	return !ok || e.ContentHash == "" || prev.ContentHash != e.ContentHash
}

func (l *Library) Get(url string) (*Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[Key(url)]
	return e, ok
}

func (l *Library) Delete(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := Key(url)
	if _, ok := l.entries[key]; !ok {
		return false
	}
	delete(l.entries, key)
	return true
}

// URLs lists the stored documents in sorted order.
func (l *Library) URLs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.entries))
	for k := range l.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Cleanup removes expired entries.
func (l *Library) Cleanup() int {
	if l.ttl <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	removed := 0
	for k, e := range l.entries {
		if now.Sub(e.LoadedAt) > l.ttl {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Start runs Cleanup periodically until Stop is called or ctx ends.
func (l *Library) Start(ctx context.Context, every time.Duration) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

func (l *Library) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
