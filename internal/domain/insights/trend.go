package insights

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
)

// TrendProperties are the columns the dashboard charts over time.
var TrendProperties = []string{"score", "start of sleep", "sleep total h", "HR average", "HRV average"}

// Point is one present value of a property.
type Point struct {
	Day   string  `json:"day"`
	Value float64 `json:"value"`
}

// Trend describes a property over the selected nights. SlopePerDay and
// Intercept come from a least-squares line over days since the first
// selected night; SlopePercent is that slope relative to the mean, 0 when
// undefined. Fit holds the line's value at the first and last point, or is
// empty when no line can be fitted.
type Trend struct {
	Property     string   `json:"property"`
	Points       []Point  `json:"points"`
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	Mean         *float64 `json:"mean"`
	SlopePerDay  float64  `json:"slope_per_day"`
	SlopePercent float64  `json:"slope_percent"`
	Intercept    *float64 `json:"intercept"`
	Fit          []Point  `json:"fit"`
}

// Trends fits every property.
func Trends(ds *model.Dataset, properties []string) ([]Trend, error) {
	out := make([]Trend, 0, len(properties))
	for _, prop := range properties {
		t, err := fit(ds, prop)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func fit(ds *model.Dataset, prop string) (Trend, error) {
	col, err := ds.Column(prop)
	if err != nil {
		return Trend{}, fmt.Errorf("trend: %w", err)
	}
	t := Trend{Property: prop, Points: []Point{}, Fit: []Point{}}
	rows := ds.Rows()
	if len(rows) == 0 {
		return t, nil
	}
	origin := rows[0].Day

	var xs, ys []float64
	for i, v := range col {
		if !v.Valid {
			continue
		}
		t.Points = append(t.Points, Point{Day: rows[i].Key(), Value: v.Value})
		xs = append(xs, rows[i].Day.Sub(origin).Hours()/24)
		ys = append(ys, v.Value)
		if t.Min == nil || v.Value < *t.Min {
			t.Min = ptr(v.Value)
		}
		if t.Max == nil || v.Value > *t.Max {
			t.Max = ptr(v.Value)
		}
	}
	if len(ys) == 0 {
		return t, nil
	}

	mean, _ := Mean(col)
	if m := prep.Round(mean, 1); m.Valid {
		t.Mean = ptr(m.Value)
	}
	slope, intercept, ok := LinearFit(xs, ys)
	if !ok {
		return t, nil
	}
	t.SlopePerDay = prep.Round(slope, 4).Or(0)
	if b := prep.Round(intercept, 4); b.Valid {
		t.Intercept = ptr(b.Value)
	}
	last := len(xs) - 1
	for _, i := range []int{0, last} {
		if y := prep.Round(intercept+slope*xs[i], 4); y.Valid {
			t.Fit = append(t.Fit, Point{Day: t.Points[i].Day, Value: y.Value})
		}
	}
	if mean != 0 {
		t.SlopePercent = prep.Round(100*slope/mean, 3).Or(0)
	}
	return t, nil
}

// Slope is the least-squares gradient of ys over xs. ok is false with
// fewer than two points or no spread in xs.
func Slope(xs, ys []float64) (float64, bool) {
	slope, _, ok := LinearFit(xs, ys)
	return slope, ok
}

// LinearFit returns the least-squares line y = intercept + slope*x. ok is
// false with fewer than two points or no spread in xs.
func LinearFit(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := min(len(xs), len(ys))
	if n < 2 {
		return 0, 0, false
	}
	xs, ys = xs[:n], ys[:n]
	if stat.Variance(xs, nil) == 0 {
		return 0, 0, false
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsNaN(intercept) {
		return 0, 0, false
	}
	return slope, intercept, true
}

func ptr(v float64) *float64 { return &v }
