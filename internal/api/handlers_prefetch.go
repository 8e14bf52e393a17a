package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type prefetchRequest struct {
	URLs    []string `json:"urls"`
	Refresh bool     `json:"refresh"`
}

// handlePrefetch queues documents to be loaded in the background.
func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefetch == nil {
		writeError(w, r, errNoPrefetch)
		return
	}
	var req prefetchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, r, badRequest("urls is required"))
		return
	}
	for _, u := range req.URLs {
		if u == "" {
			writeError(w, r, badRequest("urls must not contain empty entries"))
			return
		}
	}

	snap, err := s.deps.Prefetch.Submit(req.URLs, req.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

func (s *Server) handleGetPrefetch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefetch == nil {
		writeError(w, r, errNoPrefetch)
		return
	}
	jobID := chi.URLParam(r, "jobID")
	snap, ok := s.deps.Prefetch.GetJob(jobID)
	if !ok {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
