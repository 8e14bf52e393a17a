package api

import (
	"net/http"

	"github.com/depeele/summarization/internal/rank"
)

type summaryRequest struct {
	Sentences     []rank.Sentence `json:"sentences"`
	ShowSentences *int            `json:"show_sentences"`
	Expand        bool            `json:"expand"`
}

// handleSummary computes a threshold for ranks supplied by the caller,
// without loading a document.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	show := s.cfg.ShowSentences
	if req.ShowSentences != nil {
		show = *req.ShowSentences
	}

	table := rank.Build(req.Sentences)
	sum := rank.NewSummary(table, show)
	if req.Expand {
		sum.Expand()
	}
	visible := sum.VisibleIDs()
	if visible == nil {
		visible = []string{}
	}
	s.deps.Metrics.ObserveSummary(sum.Threshold().Found, len(visible))
	writeJSON(w, http.StatusOK, summaryView{
		Threshold:     sum.Threshold(),
		ShowSentences: sum.ShowSentences(),
		Expanded:      sum.Expanded(),
		Ranked:        table.Ranked(),
		Visible:       visible,
	})
}
