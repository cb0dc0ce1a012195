package api

import (
	"net/http"

	"github.com/okian/sleeplab/internal/domain/insights"
	"github.com/okian/sleeplab/pkg/logger"
)

// HandleSummary handles GET /api/v1/summary. Group means are computed over
// the date window only; the other filters would empty whole groups.
func (s *Server) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	window := insights.Selection{From: sel.From}.Apply(ds)
	sums, err := insights.Summaries(window, insights.SummaryProperties)
	if err != nil {
		s.log.Error(r.Context(), "summary failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nights": window.Len(), "groups": sums})
}

// HandleTrends handles GET /api/v1/trends.
func (s *Server) HandleTrends(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	selected := sel.Apply(ds)
	trends, err := insights.Trends(selected, insights.TrendProperties)
	if err != nil {
		s.log.Error(r.Context(), "trend fit failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nights": selected.Len(), "trends": trends})
}
