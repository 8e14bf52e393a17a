package api

import (
	"fmt"
	"net/http"

	"github.com/depeele/summarization/internal/highlight"
	"github.com/depeele/summarization/internal/notes"
	"github.com/go-chi/chi/v5"
)

type highlightView struct {
	ID      string          `json:"id"`
	State   highlight.State `json:"state"`
	Saved   highlight.Style `json:"saved,omitempty"`
	Restore highlight.Style `json:"restore,omitempty"`
	Changed bool            `json:"changed"`
}

func (s *Server) highlightView(id string) highlightView {
	saved, _ := s.deps.Highlights.Saved(id)
	return highlightView{ID: id, State: s.deps.Highlights.State(id), Saved: saved}
}

func (s *Server) handleGetHighlight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.highlightView(chi.URLParam(r, "noteID")))
}

// handleAttachHighlight records the element's original style. Only notes
// that exist can be highlighted.
func (s *Server) handleAttachHighlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	var req struct {
		Style highlight.Style `json:"style"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, ok := s.deps.Notes.Get(id); !ok {
		writeError(w, r, fmt.Errorf("%w: %s", notes.ErrNotFound, id))
		return
	}
	if err := s.deps.Highlights.Attach(id, req.Style); err != nil {
		writeError(w, r, err)
		return
	}
	v := s.highlightView(id)
	v.Changed = true
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleEnterHighlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	changed := s.deps.Highlights.Enter(id)
	v := s.highlightView(id)
	v.Changed = changed
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleLeaveHighlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	restore, changed := s.deps.Highlights.Leave(id)
	v := s.highlightView(id)
	v.Restore, v.Changed = restore, changed
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDetachHighlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	restore, changed := s.deps.Highlights.Detach(id)
	v := s.highlightView(id)
	v.Restore, v.Changed = restore, changed
	writeJSON(w, http.StatusOK, v)
}
