package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sleeplab/internal/domain/correlation"
	"github.com/okian/sleeplab/pkg/logger"
)

// HandleCorrelations handles GET /api/v1/correlations over the selected
// nights. ?reference= limits the output to one reference column.
func (s *Server) HandleCorrelations(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	refs := s.references
	if ref := r.URL.Query().Get("reference"); ref != "" {
		refs = []string{ref}
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	selected := sel.Apply(ds)

	results := make([]correlation.Result, 0, len(refs))
	for _, ref := range refs {
		res, err := correlation.Analyze(selected, ref, s.candidates, correlation.WithThreshold(s.threshold))
		if err != nil {
			if errors.Is(err, correlation.ErrUnknownReference) {
				writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
				return
			}
			s.log.Error(r.Context(), "correlation failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"nights": selected.Len(), "results": correlation.Documents(results)})
}
