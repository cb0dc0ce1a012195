package insights

import (
	"fmt"

	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
)

// SummaryProperties are the columns averaged per group.
var SummaryProperties = []string{"score", "start of sleep", "end of sleep", "HR average", "HRV average"}

// Stat is the mean of one property; Mean is nil when no value is present.
type Stat struct {
	Property string   `json:"property"`
	Mean     *float64 `json:"mean"`
	Count    int      `json:"count"`
}

// GroupSummary holds the means of one group of nights.
type GroupSummary struct {
	Group  string `json:"group"`
	Nights int    `json:"nights"`
	Stats  []Stat `json:"stats"`
}

type group struct {
	name string
	keep func(*model.NightRow) bool
}

var groups = []group{
	{"week even", func(r *model.NightRow) bool { return r.WeekEven }},
	{"week uneven", func(r *model.NightRow) bool { return !r.WeekEven }},
	{"weekdays", func(r *model.NightRow) bool { return !r.IsWeekend() }},
	{"weekend", func(r *model.NightRow) bool { return r.IsWeekend() }},
}

// Summaries averages properties per group, rounded to one decimal.
func Summaries(ds *model.Dataset, properties []string) ([]GroupSummary, error) {
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		sub := ds.Filter(g.keep)
		gs := GroupSummary{Group: g.name, Nights: sub.Len(), Stats: make([]Stat, 0, len(properties))}
		for _, prop := range properties {
			col, err := sub.Column(prop)
			if err != nil {
				return nil, fmt.Errorf("summary %s: %w", g.name, err)
			}
			st := Stat{Property: prop}
			if mean, n := Mean(col); n > 0 {
				st.Count = n
				if m := prep.Round(mean, 1); m.Valid {
					st.Mean = &m.Value
				}
			}
			gs.Stats = append(gs.Stats, st)
		}
		out = append(out, gs)
	}
	return out, nil
}

// Mean averages present values and returns how many there were.
func Mean(values []model.Optional[float64]) (float64, int) {
	var sum float64
	n := 0
	for _, v := range values {
		if v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
