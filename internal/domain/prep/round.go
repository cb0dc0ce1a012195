package prep

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/okian/sleeplab/internal/domain/model"
)

// Round rounds half away from zero on the shortest decimal form of x, so
// 0.25 becomes 0.3 rather than suffering binary representation error.
// NaN and infinities are reported as missing.
func Round(x float64, places int32) model.Optional[float64] {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return model.None[float64]()
	}
	v, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return model.Some(v)
}

func roundPtr(p *float64, places int32) model.Optional[float64] {
	if p == nil {
		return model.None[float64]()
	}
	return Round(*p, places)
}

// scaled divides a raw value by a unit factor and rounds to one decimal.
func scaled(p *float64, factor float64) model.Optional[float64] {
	if p == nil {
		return model.None[float64]()
	}
	return Round(*p/factor, 1)
}
