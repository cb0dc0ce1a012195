// Package model contains the records and rows passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// Document is the top-level shape of the vendor sleep export.
type Document struct {
	Data      []RawNightRecord `json:"data"`
	NextToken *string          `json:"next_token,omitempty"`
}

// RawNightRecord is one element of the vendor's sleep list. Numeric fields
// are pointers so that an absent key or JSON null stays distinguishable
// from zero. The short-interval series (heart_rate, hrv, movement_30_sec)
// are intentionally not declared and are discarded while decoding.
type RawNightRecord struct {
	ID                    string     `json:"id"`
	Day                   string     `json:"day"`
	BedtimeStart          *string    `json:"bedtime_start"`
	BedtimeEnd            *string    `json:"bedtime_end"`
	TimeInBed             *float64   `json:"time_in_bed"`
	TotalSleepDuration    *float64   `json:"total_sleep_duration"`
	DeepSleepDuration     *float64   `json:"deep_sleep_duration"`
	LightSleepDuration    *float64   `json:"light_sleep_duration"`
	RemSleepDuration      *float64   `json:"rem_sleep_duration"`
	AwakeTime             *float64   `json:"awake_time"`
	Latency               *float64   `json:"latency"`
	AverageHeartRate      *float64   `json:"average_heart_rate"`
	LowestHeartRate       *float64   `json:"lowest_heart_rate"`
	AverageHRV            *float64   `json:"average_hrv"`
	AverageBreath         *float64   `json:"average_breath"`
	RestlessPeriods       *float64   `json:"restless_periods"`
	Efficiency            *float64   `json:"efficiency"`
	Period                *float64   `json:"period"`
	Type                  string     `json:"type"`
	SleepAlgorithmVersion string     `json:"sleep_algorithm_version"`
	Readiness             *Readiness `json:"readiness"`
}

// Readiness is the optional nested readiness summary of a night.
type Readiness struct {
	Score                *float64 `json:"score"`
	TemperatureDeviation *float64 `json:"temperature_deviation"`
}

// JSON renders the readiness object compactly, or "" when absent.
func (r *Readiness) JSON() string {
	if r == nil {
		return ""
	}
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// NormalizedRecord is a raw record that passed the filter, with its day
// parsed and its bedtimes expressed as naive wall-clock time in the
// reference zone.
type NormalizedRecord struct {
	Raw          RawNightRecord
	Day          time.Time
	BedtimeStart Optional[time.Time]
	BedtimeEnd   Optional[time.Time]
}
