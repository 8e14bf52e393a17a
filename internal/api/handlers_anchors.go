package api

import (
	"fmt"
	"net/http"

	"github.com/depeele/summarization/internal/anchor"
	"github.com/depeele/summarization/internal/library"
)

type createAnchorRequest struct {
	URL       string           `json:"url"`
	Start     *anchor.Boundary `json:"start"`
	End       *anchor.Boundary `json:"end"`
	ElementID string           `json:"element_id"`
}

type resolveRequest struct {
	Anchor anchor.RawAnchor `json:"anchor"`
	URL    string           `json:"url"`
}

// resolutionView is a resolution plus the ids of the tokens it covers.
type resolutionView struct {
	Status   anchor.Status `json:"status"`
	Range    *anchor.Range `json:"range,omitempty"`
	TokenIDs []string      `json:"token_ids,omitempty"`
}

func (s *Server) resolve(e *library.Entry, a anchor.Anchor) resolutionView {
	res := anchor.Resolve(e.Stream, a)
	s.deps.Metrics.ObserveResolution(res.Status.String())
	v := resolutionView{Status: res.Status}
	if res.OK() {
		rng := res.Range
		v.Range = &rng
		v.TokenIDs = e.Stream.IDs(rng.Start.Token, rng.End.Token)
	}
	return v
}

func (s *Server) loadedEntry(rawURL string) (*library.Entry, error) {
	if rawURL == "" {
		return nil, badRequest("url is required")
	}
	e, ok := s.deps.Library.Get(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", library.ErrNotLoaded, rawURL)
	}
	return e, nil
}

func (s *Server) handleCreateAnchor(w http.ResponseWriter, r *http.Request) {
	var req createAnchorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.loadedEntry(req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var a anchor.Anchor
	switch {
	case req.ElementID != "":
		a, err = anchor.CreateForElement(e.Stream, req.ElementID)
	case req.Start != nil && req.End != nil:
		a, err = anchor.Create(e.Stream, anchor.Selection{Start: *req.Start, End: *req.End})
	default:
		err = badRequest("either element_id or start and end are required")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"anchor": a})
}

func (s *Server) handleResolveAnchor(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := anchor.Normalize(req.Anchor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := req.URL
	if page == "" {
		page = a.URL
	}
	e, err := s.loadedEntry(page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.resolve(e, a))
}
