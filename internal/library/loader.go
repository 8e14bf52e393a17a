package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/fetch"
	"github.com/depeele/summarization/internal/parser"
)

// ErrNotLoaded is returned for a URL that is neither loaded nor fetchable.
var ErrNotLoaded = errors.New("document not loaded")

// Ranker scores the sentences of a document in place.
type Ranker interface {
	Rank(ctx context.Context, doc *doctree.Document) (int, error)
}

// Refresher is implemented by fetchers that can bypass their own cache.
// Load uses it when refresh is set.
type Refresher interface {
	Refresh(ctx context.Context, url string) (*fetch.Payload, error)
}

// Loader fetches, parses and ranks documents into a Library.
type Loader struct {
	lib     *Library
	fetcher fetch.Fetcher
	ranker  Ranker
	opts    parser.Options
	log     *slog.Logger
}

// NewLoader wires a loader. fetcher and ranker may be nil.
func NewLoader(lib *Library, fetcher fetch.Fetcher, ranker Ranker, opts parser.Options, log *slog.Logger) *Loader {
	return &Loader{lib: lib, fetcher: fetcher, ranker: ranker, opts: opts, log: log}
}

// Library returns the registry the loader writes to.
func (l *Loader) Library() *Library { return l.lib }

// Options returns the parser options used for fetched documents.
func (l *Loader) Options() parser.Options { return l.opts }

// Load returns the entry for rawURL, fetching and parsing the document when
// it is not loaded or refresh is set.
func (l *Loader) Load(ctx context.Context, rawURL string, refresh, forceRank bool) (*Entry, error) {
	if !refresh {
		if e, ok := l.lib.Get(rawURL); ok {
			return e, nil
		}
	}
	if l.fetcher == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, rawURL)
	}

	payload, err := l.fetch(ctx, rawURL, refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	name := path.Base(urlPath(rawURL))
	p, err := parser.ForContentType(payload.MediaType(), l.opts)
	if errors.Is(err, parser.ErrUnsupported) {
		p, err = parser.ForFile(name, l.opts)
	}
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(payload.Body), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	doc.URL = Key(rawURL)
	return l.Ingest(ctx, doc, payload.Body, forceRank), nil
}

// fetch requests rawURL without its fragment.
func (l *Loader) fetch(ctx context.Context, rawURL string, refresh bool) (*fetch.Payload, error) {
	u := Key(rawURL)
	if r, ok := l.fetcher.(Refresher); ok && refresh {
		return r.Refresh(ctx, u)
	}
	return l.fetcher.Fetch(ctx, u)
}

// Ingest ranks an already parsed document if needed and stores it. data
// is the raw source, used for the content hash.
func (l *Loader) Ingest(ctx context.Context, doc *doctree.Document, data []byte, forceRank bool) *Entry {
	l.rankIfNeeded(ctx, doc, forceRank)
	e := NewEntry(doc, ContentHashHex(data))
	if changed := l.lib.Put(e); changed {
		l.log.Info("document loaded",
			"url", doc.URL,
			"sentences", len(doc.Sentences()),
			"ranked", e.Table.Ranked(),
		)
	}
	return e
}

// rankIfNeeded asks the ranker for scores when the document carries none.
// A ranking failure leaves the document unranked.
func (l *Loader) rankIfNeeded(ctx context.Context, doc *doctree.Document, force bool) {
	if l.ranker == nil {
		return
	}
	if !force && hasRanks(doc) {
		return
	}
	if _, err := l.ranker.Rank(ctx, doc); err != nil {
		l.log.Warn("ranking failed, serving unranked document", "url", doc.URL, "error", err)
	}
}

func hasRanks(doc *doctree.Document) bool {
	for _, sr := range doc.Sentences() {
		if sr.Rank.Valid {
			return true
		}
	}
	return false
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}
