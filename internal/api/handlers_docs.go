package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/library"
	"github.com/depeele/summarization/internal/logger"
	"github.com/depeele/summarization/internal/parser"
	"github.com/depeele/summarization/internal/rank"
)

type summaryView struct {
	Threshold     rank.Threshold `json:"threshold"`
	ShowSentences int            `json:"show_sentences"`
	Expanded      bool           `json:"expanded"`
	Ranked        int            `json:"ranked"`
	Visible       []string       `json:"visible"`
}

type documentResponse struct {
	Document    *doctree.Document `json:"document"`
	ContentHash string            `json:"content_hash,omitempty"`
	Summary     summaryView       `json:"summary"`
}

// summarize runs the threshold scan over the entry's cached bucket table.
func (s *Server) summarize(e *library.Entry, show int, expand bool) summaryView {
	sum := rank.NewSummary(e.Table, show)
	if expand {
		sum.Expand()
	}
	visible := sum.VisibleIDs()
	if visible == nil {
		visible = []string{}
	}
	s.deps.Metrics.ObserveSummary(sum.Threshold().Found, len(visible))
	return summaryView{
		Threshold:     sum.Threshold(),
		ShowSentences: sum.ShowSentences(),
		Expanded:      sum.Expanded(),
		Ranked:        e.Table.Ranked(),
		Visible:       visible,
	}
}

// showSentences reads the show_sentences query parameter, falling back to
// the configured default.
func (s *Server) showSentences(r *http.Request) (int, error) {
	v := r.URL.Query().Get("show_sentences")
	if v == "" {
		return s.cfg.ShowSentences, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest("show_sentences must be a non-negative integer")
	}
	return n, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSON(w, http.StatusOK, map[string]any{"documents": s.deps.Library.URLs()})
		return
	}
	show, err := s.showSentences(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e, err := s.deps.Loader.Load(r.Context(), rawURL, queryBool(r, "refresh"), queryBool(r, "rank"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{
		Document:    e.Doc,
		ContentHash: e.ContentHash,
		Summary:     s.summarize(e, show, queryBool(r, "expand")),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	if !s.deps.Library.Delete(rawURL) {
		writeError(w, r, fmt.Errorf("%w: %s", library.ErrNotLoaded, rawURL))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	maxBytes := s.cfg.MaxDocumentBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		jsonError(w, "file too large or invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, "unsupported file type", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	p, err := parser.ForFile(filename, s.deps.Loader.Options())
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docURL := r.FormValue("url")
	if docURL == "" {
		hash := library.ContentHashHex(data)
		docURL = fmt.Sprintf("upload://%s/%s", hash[:16], url.PathEscape(filename))
	}
	doc.URL = library.Key(docURL)
	force, _ := strconv.ParseBool(r.FormValue("rank"))
	e := s.deps.Loader.Ingest(r.Context(), doc, data, force)
	log.Info("document uploaded", "url", doc.URL, "filename", filename, "size", len(data))

	writeJSON(w, http.StatusCreated, documentResponse{
		Document:    e.Doc,
		ContentHash: e.ContentHash,
		Summary:     s.summarize(e, s.cfg.ShowSentences, false),
	})
}
