package model

import (
	"fmt"
	"slices"
	"time"
)

// DayLayout is the calendar-date format used for the day index.
const DayLayout = "2006-01-02"

// NightRow is one qualifying night after derivation. Field order follows
// the exported column order.
type NightRow struct {
	Day                  time.Time
	AverageBreath        Optional[float64]
	HRAverage            Optional[float64]
	HRVAverage           Optional[float64]
	TimeAwakeH           Optional[float64]
	BedtimeEnd           Optional[time.Time]
	BedtimeStart         Optional[time.Time]
	SleepDeepH           Optional[float64]
	Efficiency           Optional[float64]
	LatencyMin           Optional[float64]
	SleepLightH          Optional[float64]
	HRMini               Optional[float64]
	Period               Optional[float64]
	SleepRemH            Optional[float64]
	RestlessPeriods      Optional[float64]
	TimeInBedH           Optional[float64]
	SleepTotalH          Optional[float64]
	Type                 string
	Score                Optional[float64]
	TemperatureDeviation Optional[float64]
	DayOfWeek            int // Monday=0 .. Sunday=6
	WeekNo               int // ISO week of Day
	WeekEven             bool
	REMPct               Optional[float64]
	DeepPct              Optional[float64]
	LightPct             Optional[float64]
	StartOfSleep         Optional[float64]
	EndOfSleep           Optional[float64]
}

// Key returns the day index key.
func (r *NightRow) Key() string {
	return r.Day.Format(DayLayout)
}

// IsWeekend reports whether the night belongs to Saturday or Sunday.
func (r *NightRow) IsWeekend() bool {
	return r.DayOfWeek >= 5
}

// Dataset is an immutable, day-ordered set of nights with a unique day index.
type Dataset struct {
	rows  []NightRow
	index map[string]int
}

// NewDataset sorts rows by day and indexes them. Two rows for the same day
// are rejected with ErrDuplicateDay.
func NewDataset(rows []NightRow) (*Dataset, error) {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b NightRow) int {
		return a.Day.Compare(b.Day)
	})
	index := make(map[string]int, len(sorted))
	for i := range sorted {
		key := sorted[i].Key()
		if _, ok := index[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDay, key)
		}
		index[key] = i
	}
	return &Dataset{rows: sorted, index: index}, nil
}

// Rows returns the rows in ascending day order. Callers must not modify them.
func (d *Dataset) Rows() []NightRow {
	if d == nil {
		return nil
	}
	return d.rows
}

// Len returns the number of nights.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Columns returns the ordered column names, day first.
func (d *Dataset) Columns() []string {
	return ColumnNames()
}

// Column extracts a numeric column in row order.
func (d *Dataset) Column(name string) ([]Optional[float64], error) {
	col, ok := LookupColumn(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if col.Number == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	out := make([]Optional[float64], d.Len())
	for i := range out {
		out[i] = col.Number(&d.rows[i])
	}
	return out, nil
}

// Lookup returns the row for a calendar day.
func (d *Dataset) Lookup(day time.Time) (NightRow, bool) {
	if d == nil {
		return NightRow{}, false
	}
	i, ok := d.index[day.Format(DayLayout)]
	if !ok {
		return NightRow{}, false
	}
	return d.rows[i], true
}

// Filter returns a new dataset holding the rows keep accepts.
func (d *Dataset) Filter(keep func(*NightRow) bool) *Dataset {
	out := &Dataset{index: make(map[string]int)}
	for i := range d.Rows() {
		if keep(&d.rows[i]) {
			out.index[d.rows[i].Key()] = len(out.rows)
			out.rows = append(out.rows, d.rows[i])
		}
	}
	return out
}
