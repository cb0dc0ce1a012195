package prep

import (
	"fmt"
	"time"

	// Embedded zone database so the reference zone resolves on hosts without one.
	_ "time/tzdata"

	"github.com/okian/sleeplab/internal/domain/model"
)

// DefaultTimezone is the reference zone for wall-clock bedtimes.
const DefaultTimezone = "Europe/Berlin"

const localLayout = "2006-01-02T15:04:05"

// LoadLocation resolves a zone name, wrapping failures with ErrInvalidTimezone.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// normalize parses the day and both bedtimes of a record.
func normalize(r model.RawNightRecord, loc *time.Location) (model.NormalizedRecord, error) {
	day, err := time.Parse(model.DayLayout, r.Day)
	if err != nil {
		return model.NormalizedRecord{}, fmt.Errorf("%w: id %q: day %q", ErrMalformedRecord, r.ID, r.Day)
	}
	start, err := parseBedtime(r.BedtimeStart, loc)
	if err != nil {
		return model.NormalizedRecord{}, fmt.Errorf("%w: id %q: bedtime_start: %w", ErrMalformedRecord, r.ID, err)
	}
	end, err := parseBedtime(r.BedtimeEnd, loc)
	if err != nil {
		return model.NormalizedRecord{}, fmt.Errorf("%w: id %q: bedtime_end: %w", ErrMalformedRecord, r.ID, err)
	}
	return model.NormalizedRecord{Raw: r, Day: day, BedtimeStart: start, BedtimeEnd: end}, nil
}

// parseBedtime reads an ISO-8601 timestamp, converts it to loc and drops the
// zone. Timestamps without an offset are taken as wall-clock time in loc.
func parseBedtime(s *string, loc *time.Location) (model.Optional[time.Time], error) {
	if s == nil || *s == "" {
		return model.None[time.Time](), nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		t, err = time.ParseInLocation(localLayout, *s, loc)
		if err != nil {
			return model.None[time.Time](), fmt.Errorf("parse %q: %w", *s, err)
		}
	}
	return model.Some(naive(t.In(loc))), nil
}

// naive keeps the wall-clock fields of t and discards its zone.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// weekdayIndex maps a date to Monday=0 .. Sunday=6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
