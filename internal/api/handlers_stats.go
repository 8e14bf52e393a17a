package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleFetchStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.FetchStats == nil {
		jsonError(w, "fetch stats unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{
		"stats":     s.deps.FetchStats.Snapshot(),
		"documents": len(s.deps.Library.URLs()),
	}
	if s.deps.Cache != nil {
		hits, misses := s.deps.Cache.Stats()
		resp["cache"] = map[string]int64{"hits": hits, "misses": misses}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
