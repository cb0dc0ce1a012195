package chart

import (
	"testing"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/okian/sleeplab/internal/domain/correlation"
	"github.com/okian/sleeplab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// screen reports where the first and last point of xys land on the
// panel's y axis, 0 at the bottom and 1 at the top.
func screen(p *plot.Plot, xys plotter.XYs) (first, last float64) {
	norm := func(y float64) float64 { return p.Y.Scale.Normalize(p.Y.Min, p.Y.Max, y) }
	return norm(xys[0].Y), norm(xys[len(xys)-1].Y)
}

func TestPanelDirection(t *testing.T) {
	Convey("Given a rising reference and a falling candidate", t, func() {
		start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		rows := make([]model.NightRow, 5)
		ref := make([]model.Optional[float64], 5)
		col := make([]model.Optional[float64], 5)
		for i := range rows {
			rows[i] = model.NightRow{Day: start.AddDate(0, 0, i)}
			ref[i] = model.Some(float64(i))
			col[i] = model.Some(50 - 2*float64(i))
		}
		e := correlation.Entry{Column: "HRV average", R: -1, Pairs: 5, Defined: true, Sign: correlation.Negative}

		cand := series(rows, col)
		lo, hi := bounds(cand)

		Convey("When drawn as a negative panel", func() {
			p, err := panel(rows, ref, col, e, "start of sleep", true)
			So(err, ShouldBeNil)
			refXY := referenceSeries(series(rows, ref), lo, hi, true)

			Convey("Then both lines rise on screen", func() {
				cFirst, cLast := screen(p, cand)
				rFirst, rLast := screen(p, refXY)
				So(cLast, ShouldBeGreaterThan, cFirst)
				So(rLast, ShouldBeGreaterThan, rFirst)
			})
		})

		Convey("When drawn as a positive panel", func() {
			p, err := panel(rows, ref, col, e, "start of sleep", false)
			So(err, ShouldBeNil)
			refXY := referenceSeries(series(rows, ref), lo, hi, false)

			Convey("Then the reference keeps its own direction", func() {
				rFirst, rLast := screen(p, refXY)
				So(rLast, ShouldBeGreaterThan, rFirst)
				So(refXY[0].Y, ShouldEqual, lo)
				So(refXY[4].Y, ShouldEqual, hi)
			})
		})
	})
}
