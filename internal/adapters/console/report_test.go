package console_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/okian/sleeplab/internal/adapters/console"
	"github.com/okian/sleeplab/internal/domain/correlation"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteReport(t *testing.T) {
	Convey("Given correlation results", t, func() {
		results := []correlation.Result{{
			Reference: "start of sleep",
			Entries: []correlation.Entry{
				{Column: "HR average", R: 0.512, Defined: true, Sign: correlation.Positive},
				{Column: "HR mini", R: math.NaN()},
			},
		}}

		Convey("When written to a non-terminal", func() {
			var buf bytes.Buffer
			err := console.WriteReport(&buf, results)

			Convey("Then the plain report text is produced", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "=== Effect of start of sleep ===\n+0.512 : HR average\nn/a : HR mini\n\n")
			})
		})
	})
}
