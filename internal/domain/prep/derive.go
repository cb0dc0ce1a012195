package prep

import (
	"time"

	"github.com/okian/sleeplab/internal/domain/model"
)

const (
	secondsPerHour   = 3600.0
	secondsPerMinute = 60.0
)

// derive computes one NightRow from a normalized record.
func derive(r model.NormalizedRecord, zeroReadinessAsMissing bool) model.NightRow {
	raw := &r.Raw
	_, week := r.Day.ISOWeek()
	score, temperature := flattenReadiness(raw.Readiness, zeroReadinessAsMissing)

	row := model.NightRow{
		Day:                  r.Day,
		AverageBreath:        roundPtr(raw.AverageBreath, 1),
		HRAverage:            roundPtr(raw.AverageHeartRate, 1),
		HRVAverage:           model.FromPtr(raw.AverageHRV),
		TimeAwakeH:           scaled(raw.AwakeTime, secondsPerHour),
		BedtimeEnd:           r.BedtimeEnd,
		BedtimeStart:         r.BedtimeStart,
		SleepDeepH:           scaled(raw.DeepSleepDuration, secondsPerHour),
		Efficiency:           model.FromPtr(raw.Efficiency),
		LatencyMin:           scaled(raw.Latency, secondsPerMinute),
		SleepLightH:          scaled(raw.LightSleepDuration, secondsPerHour),
		HRMini:               model.FromPtr(raw.LowestHeartRate),
		Period:               model.FromPtr(raw.Period),
		SleepRemH:            scaled(raw.RemSleepDuration, secondsPerHour),
		RestlessPeriods:      model.FromPtr(raw.RestlessPeriods),
		TimeInBedH:           scaled(raw.TimeInBed, secondsPerHour),
		SleepTotalH:          scaled(raw.TotalSleepDuration, secondsPerHour),
		Type:                 raw.Type,
		Score:                score,
		TemperatureDeviation: temperature,
		DayOfWeek:            weekdayIndex(r.Day),
		WeekNo:               week,
		WeekEven:             week%2 == 0,
		REMPct:               stageShare(raw.RemSleepDuration, raw.TotalSleepDuration),
		DeepPct:              stageShare(raw.DeepSleepDuration, raw.TotalSleepDuration),
		LightPct:             stageShare(raw.LightSleepDuration, raw.TotalSleepDuration),
		StartOfSleep:         startOfSleep(r.Day, r.BedtimeStart),
		EndOfSleep:           endOfSleep(r.BedtimeEnd),
	}
	return row
}

// stageShare is stage / total * 100. A zero or missing total has no share.
func stageShare(stage, total *float64) model.Optional[float64] {
	if stage == nil || total == nil || *total == 0 {
		return model.None[float64]()
	}
	return Round(*stage / *total * 100, 1)
}

// startOfSleep is the signed hour offset of bedtime from the midnight that
// ends day: 23:30 the evening before is -0.5, 00:30 after midnight is 0.5.
func startOfSleep(day time.Time, bedtime model.Optional[time.Time]) model.Optional[float64] {
	if !bedtime.Valid {
		return model.None[float64]()
	}
	midnight := day.AddDate(0, 0, 1)
	return Round(bedtime.Value.Sub(midnight).Hours(), 1)
}

// endOfSleep is the wake-up clock time in decimal hours; seconds are ignored.
func endOfSleep(bedtime model.Optional[time.Time]) model.Optional[float64] {
	if !bedtime.Valid {
		return model.None[float64]()
	}
	t := bedtime.Value
	return Round(float64(t.Hour())+float64(t.Minute())/60, 1)
}
