package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/sleeplab/internal/domain/insights"
	"github.com/okian/sleeplab/internal/domain/model"
)

// selection reads the dashboard filters from the query string. A missing
// from date defaults to the configured number of weeks before today.
func (s *Server) selection(r *http.Request) (insights.Selection, error) {
	q := r.URL.Query()
	sel := insights.Selection{
		Week:    strings.ToLower(q.Get("week")),
		Part:    strings.ToLower(q.Get("part")),
		Weekday: strings.ToLower(q.Get("weekday")),
	}
	switch from := q.Get("from"); from {
	case "":
		today := s.now().UTC().Truncate(24 * time.Hour)
		sel.From = today.AddDate(0, 0, -7*s.defaultWeeks)
	case "all":
	default:
		t, err := time.Parse(model.DayLayout, from)
		if err != nil {
			return sel, fmt.Errorf("%w: from must be YYYY-MM-DD or all, got %q", ErrBadRequest, from)
		}
		sel.From = t
	}
	if err := sel.Validate(); err != nil {
		return sel, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return sel, nil
}
