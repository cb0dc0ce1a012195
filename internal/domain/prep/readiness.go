package prep

import "github.com/okian/sleeplab/internal/domain/model"

// flattenReadiness lifts score and temperature deviation out of the nested
// readiness object. A key is present when it exists with a non-null value;
// zeroAsMissing restores the legacy rule that 0 means no measurement.
func flattenReadiness(r *model.Readiness, zeroAsMissing bool) (score, temperature model.Optional[float64]) {
	if r == nil {
		return score, temperature
	}
	present := func(p *float64) bool {
		return p != nil && (!zeroAsMissing || *p != 0)
	}
	if present(r.Score) {
		score = model.Some(*r.Score)
	}
	if present(r.TemperatureDeviation) {
		temperature = Round(*r.TemperatureDeviation, 1)
	}
	return score, temperature
}
