package model

import (
	"strconv"
	"time"
)

// TimestampLayout is how naive bedtimes are written to text outputs.
const TimestampLayout = "2006-01-02 15:04:05"

// ColumnKind describes how a column's cells are typed.
type ColumnKind int

const (
	KindDate ColumnKind = iota
	KindNumber
	KindTime
	KindText
	KindBool
)

// Column describes one exported column of the night dataset. Number is nil
// for columns that are not numeric.
type Column struct {
	Name   string
	Kind   ColumnKind
	Number func(*NightRow) Optional[float64]
	Text   func(*NightRow) string
}

func numberColumn(name string, get func(*NightRow) Optional[float64]) Column {
	return Column{
		Name:   name,
		Kind:   KindNumber,
		Number: get,
		Text:   func(r *NightRow) string { return FormatFloat(get(r)) },
	}
}

func intColumn(name string, get func(*NightRow) int) Column {
	return Column{
		Name:   name,
		Kind:   KindNumber,
		Number: func(r *NightRow) Optional[float64] { return Some(float64(get(r))) },
		Text:   func(r *NightRow) string { return strconv.Itoa(get(r)) },
	}
}

func timeColumn(name string, get func(*NightRow) Optional[time.Time]) Column {
	return Column{
		Name: name,
		Kind: KindTime,
		Text: func(r *NightRow) string { return FormatTime(get(r)) },
	}
}

var columns = []Column{
	{Name: "day", Kind: KindDate, Text: func(r *NightRow) string { return r.Key() }},
	numberColumn("average_breath", func(r *NightRow) Optional[float64] { return r.AverageBreath }),
	numberColumn("HR average", func(r *NightRow) Optional[float64] { return r.HRAverage }),
	numberColumn("HRV average", func(r *NightRow) Optional[float64] { return r.HRVAverage }),
	numberColumn("time awake h", func(r *NightRow) Optional[float64] { return r.TimeAwakeH }),
	timeColumn("bedtime_end", func(r *NightRow) Optional[time.Time] { return r.BedtimeEnd }),
	timeColumn("bedtime_start", func(r *NightRow) Optional[time.Time] { return r.BedtimeStart }),
	numberColumn("sleep deep h", func(r *NightRow) Optional[float64] { return r.SleepDeepH }),
	numberColumn("efficiency", func(r *NightRow) Optional[float64] { return r.Efficiency }),
	numberColumn("latency min", func(r *NightRow) Optional[float64] { return r.LatencyMin }),
	numberColumn("sleep light h", func(r *NightRow) Optional[float64] { return r.SleepLightH }),
	numberColumn("HR mini", func(r *NightRow) Optional[float64] { return r.HRMini }),
	numberColumn("period", func(r *NightRow) Optional[float64] { return r.Period }),
	numberColumn("sleep rem h", func(r *NightRow) Optional[float64] { return r.SleepRemH }),
	numberColumn("restless_periods", func(r *NightRow) Optional[float64] { return r.RestlessPeriods }),
	numberColumn("time in bed h", func(r *NightRow) Optional[float64] { return r.TimeInBedH }),
	numberColumn("sleep total h", func(r *NightRow) Optional[float64] { return r.SleepTotalH }),
	{Name: "type", Kind: KindText, Text: func(r *NightRow) string { return r.Type }},
	numberColumn("score", func(r *NightRow) Optional[float64] { return r.Score }),
	numberColumn("temperature_deviation", func(r *NightRow) Optional[float64] { return r.TemperatureDeviation }),
	intColumn("dayofweek", func(r *NightRow) int { return r.DayOfWeek }),
	intColumn("week_no", func(r *NightRow) int { return r.WeekNo }),
	{Name: "week_even", Kind: KindBool, Text: func(r *NightRow) string { return strconv.FormatBool(r.WeekEven) }},
	numberColumn("REM sleep %", func(r *NightRow) Optional[float64] { return r.REMPct }),
	numberColumn("deep sleep %", func(r *NightRow) Optional[float64] { return r.DeepPct }),
	numberColumn("light sleep %", func(r *NightRow) Optional[float64] { return r.LightPct }),
	numberColumn("start of sleep", func(r *NightRow) Optional[float64] { return r.StartOfSleep }),
	numberColumn("end of sleep", func(r *NightRow) Optional[float64] { return r.EndOfSleep }),
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c.Name] = i
	}
	return m
}()

// NightColumns returns the column registry in export order.
func NightColumns() []Column {
	return columns
}

// ColumnNames returns the exported column names in order.
func ColumnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// LookupColumn finds a column by name.
func LookupColumn(name string) (Column, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return columns[i], true
}

// RecordColumn describes one column of the pre-derivation export.
type RecordColumn struct {
	Name string
	Text func(*NormalizedRecord) string
}

func rawNumber(name string, get func(*RawNightRecord) *float64) RecordColumn {
	return RecordColumn{Name: name, Text: func(r *NormalizedRecord) string {
		return FormatFloat(FromPtr(get(&r.Raw)))
	}}
}

func rawString(name string, get func(*RawNightRecord) string) RecordColumn {
	return RecordColumn{Name: name, Text: func(r *NormalizedRecord) string { return get(&r.Raw) }}
}

var recordColumns = []RecordColumn{
	{Name: "day", Text: func(r *NormalizedRecord) string { return r.Day.Format(DayLayout) }},
	rawString("id", func(r *RawNightRecord) string { return r.ID }),
	rawNumber("average_breath", func(r *RawNightRecord) *float64 { return r.AverageBreath }),
	rawNumber("average_heart_rate", func(r *RawNightRecord) *float64 { return r.AverageHeartRate }),
	rawNumber("average_hrv", func(r *RawNightRecord) *float64 { return r.AverageHRV }),
	rawNumber("awake_time", func(r *RawNightRecord) *float64 { return r.AwakeTime }),
	{Name: "bedtime_end", Text: func(r *NormalizedRecord) string { return FormatTime(r.BedtimeEnd) }},
	{Name: "bedtime_start", Text: func(r *NormalizedRecord) string { return FormatTime(r.BedtimeStart) }},
	rawNumber("deep_sleep_duration", func(r *RawNightRecord) *float64 { return r.DeepSleepDuration }),
	rawNumber("efficiency", func(r *RawNightRecord) *float64 { return r.Efficiency }),
	rawNumber("latency", func(r *RawNightRecord) *float64 { return r.Latency }),
	rawNumber("light_sleep_duration", func(r *RawNightRecord) *float64 { return r.LightSleepDuration }),
	rawNumber("lowest_heart_rate", func(r *RawNightRecord) *float64 { return r.LowestHeartRate }),
	rawNumber("period", func(r *RawNightRecord) *float64 { return r.Period }),
	{Name: "readiness", Text: func(r *NormalizedRecord) string { return r.Raw.Readiness.JSON() }},
	rawNumber("rem_sleep_duration", func(r *RawNightRecord) *float64 { return r.RemSleepDuration }),
	rawNumber("restless_periods", func(r *RawNightRecord) *float64 { return r.RestlessPeriods }),
	rawString("sleep_algorithm_version", func(r *RawNightRecord) string { return r.SleepAlgorithmVersion }),
	rawNumber("time_in_bed", func(r *RawNightRecord) *float64 { return r.TimeInBed }),
	rawNumber("total_sleep_duration", func(r *RawNightRecord) *float64 { return r.TotalSleepDuration }),
	rawString("type", func(r *RawNightRecord) string { return r.Type }),
}

// RecordColumns returns the pre-derivation column registry in export order.
func RecordColumns() []RecordColumn {
	return recordColumns
}

// FormatFloat renders a cell in shortest round-trip form; missing is empty.
func FormatFloat(v Optional[float64]) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

// FormatTime renders a naive timestamp; missing is empty.
func FormatTime(v Optional[time.Time]) string {
	if !v.Valid {
		return ""
	}
	return v.Value.Format(TimestampLayout)
}
