package insights_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/sleeplab/internal/domain/insights"
	"github.com/okian/sleeplab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// twoWeeks builds 14 nights starting Monday 2024-01-01 (ISO week 1).
func twoWeeks() *model.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]model.NightRow, 14)
	for i := range rows {
		day := start.AddDate(0, 0, i)
		_, week := day.ISOWeek()
		rows[i] = model.NightRow{
			Day:          day,
			DayOfWeek:    i % 7,
			WeekNo:       week,
			WeekEven:     week%2 == 0,
			Score:        model.Some(float64(70 + i)),
			StartOfSleep: model.Some(-1.0),
			EndOfSleep:   model.Some(7.0),
			HRAverage:    model.Some(50.0),
			SleepTotalH:  model.Some(7.0),
		}
	}
	rows[3].HRAverage = model.None[float64]()
	ds, err := model.NewDataset(rows)
	if err != nil {
		panic(err)
	}
	return ds
}

func TestSelection(t *testing.T) {
	Convey("Given two weeks of nights", t, func() {
		ds := twoWeeks()

		Convey("When nothing is selected", func() {
			So(insights.Selection{}.Apply(ds).Len(), ShouldEqual, 14)
		})

		Convey("When a start date is set", func() {
			sel := insights.Selection{From: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)}
			So(sel.Apply(ds).Len(), ShouldEqual, 5)
		})

		Convey("When filtering by week parity", func() {
			So(insights.Selection{Week: "even"}.Apply(ds).Len(), ShouldEqual, 7)
			odd := insights.Selection{Week: "odd"}.Apply(ds)
			So(odd.Rows()[0].Key(), ShouldEqual, "2024-01-01")
		})

		Convey("When filtering weekend and weekday", func() {
			So(insights.Selection{Part: "weekend"}.Apply(ds).Len(), ShouldEqual, 4)
			So(insights.Selection{Part: "weekday"}.Apply(ds).Len(), ShouldEqual, 10)
		})

		Convey("When a single weekday is chosen", func() {
			sub := insights.Selection{Weekday: "su"}.Apply(ds)

			Convey("Then only Sundays remain", func() {
				So(sub.Len(), ShouldEqual, 2)
				So(sub.Rows()[0].Key(), ShouldEqual, "2024-01-07")
			})
		})

		Convey("When criteria are combined", func() {
			sel := insights.Selection{Week: "even", Part: "weekend", Weekday: "sa"}
			So(sel.Validate(), ShouldBeNil)
			So(sel.Apply(ds).Len(), ShouldEqual, 1)
		})

		Convey("When a value is not allowed", func() {
			err := insights.Selection{Part: "holiday"}.Validate()
			So(errors.Is(err, insights.ErrInvalidSelection), ShouldBeTrue)
			err = insights.Selection{Weekday: "monday"}.Validate()
			So(errors.Is(err, insights.ErrInvalidSelection), ShouldBeTrue)
		})
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given two weeks of nights", t, func() {
		ds := twoWeeks()

		Convey("When summarized", func() {
			sums, err := insights.Summaries(ds, insights.SummaryProperties)
			So(err, ShouldBeNil)

			Convey("Then the four groups are reported in order", func() {
				So(len(sums), ShouldEqual, 4)
				So(sums[0].Group, ShouldEqual, "week even")
				So(sums[3].Group, ShouldEqual, "weekend")
				So(sums[2].Nights, ShouldEqual, 10)
			})

			Convey("Then means skip missing values", func() {
				// weekend scores: 75, 76, 82, 83
				So(*sums[3].Stats[0].Mean, ShouldEqual, 79.0)
				// week 1 scores 70..76 average 73; HR average missing once
				So(*sums[1].Stats[0].Mean, ShouldEqual, 73.0)
				So(sums[1].Stats[3].Count, ShouldEqual, 6)
				So(sums[1].Stats[4].Mean, ShouldBeNil)
			})
		})

		Convey("When a property is unknown", func() {
			_, err := insights.Summaries(ds, []string{"mood"})
			So(errors.Is(err, model.ErrUnknownColumn), ShouldBeTrue)
		})
	})
}

func TestTrends(t *testing.T) {
	Convey("Given two weeks of nights", t, func() {
		ds := twoWeeks()

		Convey("When trends are fitted", func() {
			trends, err := insights.Trends(ds, []string{"score", "sleep total h", "HRV average"})
			So(err, ShouldBeNil)

			Convey("Then a steady rise has slope one per day", func() {
				score := trends[0]
				So(len(score.Points), ShouldEqual, 14)
				So(score.SlopePerDay, ShouldEqual, 1.0)
				So(*score.Mean, ShouldEqual, 76.5)
				So(score.SlopePercent, ShouldEqual, 1.307)
				So(*score.Min, ShouldEqual, 70.0)
				So(*score.Max, ShouldEqual, 83.0)
			})

			Convey("Then the fitted line starts at the intercept", func() {
				score := trends[0]
				So(*score.Intercept, ShouldEqual, 70.0)
				So(score.Fit, ShouldResemble, []insights.Point{
					{Day: "2024-01-01", Value: 70},
					{Day: "2024-01-14", Value: 83},
				})
				So(*trends[1].Intercept, ShouldEqual, 7.0)
				So(trends[2].Intercept, ShouldBeNil)
				So(trends[2].Fit, ShouldBeEmpty)
			})

			Convey("Then a flat series has zero slope", func() {
				So(trends[1].SlopePerDay, ShouldEqual, 0.0)
				So(trends[1].SlopePercent, ShouldEqual, 0.0)
			})

			Convey("Then an empty series reports no mean", func() {
				So(trends[2].Points, ShouldBeEmpty)
				So(trends[2].Mean, ShouldBeNil)
				So(trends[2].SlopePercent, ShouldEqual, 0.0)
			})
		})
	})

	Convey("Given a single point", t, func() {
		_, ok := insights.Slope([]float64{1}, []float64{2})
		So(ok, ShouldBeFalse)
	})

	Convey("Given points on a known line", t, func() {
		slope, intercept, ok := insights.LinearFit([]float64{0, 1, 2, 3}, []float64{3, 1, -1, -3})
		So(ok, ShouldBeTrue)
		So(slope, ShouldAlmostEqual, -2.0, 1e-9)
		So(intercept, ShouldAlmostEqual, 3.0, 1e-9)
	})
}
