package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/sleeplab/internal/domain/model"
)

// Pearson returns the correlation coefficient over the rows where both
// values are present, and the number of such pairs. ok is false with fewer
// than two pairs or when either side has no variance.
func Pearson(x, y []model.Optional[float64]) (r float64, pairs int, ok bool) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if x[i].Valid && y[i].Valid {
			xs = append(xs, x[i].Value)
			ys = append(ys, y[i].Value)
		}
	}
	pairs = len(xs)
	if pairs < 2 {
		return math.NaN(), pairs, false
	}
	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN(), pairs, false
	}
	// guard against float drift just past the bounds
	return math.Max(-1, math.Min(1, r)), pairs, true
}
