package prep

import (
	"time"

	"github.com/okian/sleeplab/internal/domain/model"
)

// DefaultMinTimeInBed is the shortest time in bed that does not qualify.
// Naps and fragments at or below it are dropped.
const DefaultMinTimeInBed = 4 * time.Hour

// Filter keeps records whose time in bed is strictly greater than minimum.
// Records without a time in bed cannot qualify.
func Filter(records []model.RawNightRecord, minimum time.Duration) []model.RawNightRecord {
	limit := minimum.Seconds()
	out := make([]model.RawNightRecord, 0, len(records))
	for _, r := range records {
		if r.TimeInBed != nil && *r.TimeInBed > limit {
			out = append(out, r)
		}
	}
	return out
}
