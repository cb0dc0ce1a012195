package api

import (
	"net/http"

	"github.com/okian/sleeplab/internal/domain/model"
)

type nightsResponse struct {
	From    string           `json:"from,omitempty"`
	Count   int              `json:"count"`
	Columns []string         `json:"columns"`
	Nights  []map[string]any `json:"nights"`
}

// HandleNights handles GET /api/v1/nights, newest night first.
func (s *Server) HandleNights(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	rows := sel.Apply(ds).Rows()
	resp := nightsResponse{
		Count:   len(rows),
		Columns: model.ColumnNames(),
		Nights:  make([]map[string]any, 0, len(rows)),
	}
	if !sel.From.IsZero() {
		resp.From = sel.From.Format(model.DayLayout)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		resp.Nights = append(resp.Nights, nightJSON(&rows[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// nightJSON keeps numbers numeric and missing cells null.
func nightJSON(row *model.NightRow) map[string]any {
	cols := model.NightColumns()
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		switch c.Kind {
		case model.KindNumber:
			if v := c.Number(row); v.Valid {
				out[c.Name] = v.Value
			} else {
				out[c.Name] = nil
			}
		case model.KindBool:
			out[c.Name] = row.WeekEven
		case model.KindTime:
			if text := c.Text(row); text != "" {
				out[c.Name] = text
			} else {
				out[c.Name] = nil
			}
		default:
			out[c.Name] = c.Text(row)
		}
	}
	return out
}
