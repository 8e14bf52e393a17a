package api

import (
	"fmt"
	"net/http"

	"github.com/depeele/summarization/internal/anchor"
	"github.com/depeele/summarization/internal/logger"
	"github.com/depeele/summarization/internal/notes"
	"github.com/go-chi/chi/v5"
)

type createNoteRequest struct {
	Anchor anchor.RawAnchor `json:"anchor"`
	Text   string           `json:"text"`
	Author string           `json:"author"`
}

// noteView is a note plus, when its page is loaded, where it resolves.
type noteView struct {
	notes.Note
	Resolution *resolutionView `json:"resolution,omitempty"`
}

func (s *Server) viewNote(n notes.Note) noteView {
	v := noteView{Note: n}
	if e, ok := s.deps.Library.Get(n.Anchor.URL); ok {
		res := s.resolve(e, n.Anchor)
		v.Resolution = &res
	}
	return v
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.deps.Notes.Create(req.Anchor, req.Text, req.Author)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("note created", "note_id", n.ID, "url", n.Anchor.URL)
	writeJSON(w, http.StatusCreated, s.viewNote(n))
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("url")
	if page == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}
	list := s.deps.Notes.ListByURL(page)
	out := make([]noteView, 0, len(list))
	for _, n := range list {
		out = append(out, s.viewNote(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": out})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	n, ok := s.deps.Notes.Get(id)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: %s", notes.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, s.viewNote(n))
}

// handleDeleteNote removes the note and takes its highlight off the page
// for good.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	if !s.deps.Notes.Delete(id) {
		writeError(w, r, fmt.Errorf("%w: %s", notes.ErrNotFound, id))
		return
	}
	restore, onPage := s.deps.Highlights.Remove(id)
	resp := map[string]any{"deleted": id}
	if onPage {
		resp["restore"] = restore
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var src anchor.Source = req.Anchor
	if req.Anchor == nil {
		n, ok := s.deps.Notes.Get(id)
		if !ok {
			writeError(w, r, fmt.Errorf("%w: %s", notes.ErrNotFound, id))
			return
		}
		src = n.Anchor
	}
	c, err := s.deps.Notes.AddComment(id, src, req.Text, req.Author)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
