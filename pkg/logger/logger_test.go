package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(Options{Format: "xml"})

			Convey("Then it reports an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(Options{Format: "json", Output: &buf}), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("prep").With(String("run_id", "abc")).Info(ctx, "pipeline finished",
				Int("rows", 3),
				Bool("ok", true),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries the fields", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "pipeline finished")
				So(rec["component"], ShouldEqual, "prep")
				So(rec["run_id"], ShouldEqual, "abc")
				So(rec["rows"], ShouldEqual, float64(3))
				So(rec["ok"], ShouldEqual, true)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")

			Convey("Then info records are suppressed", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop logger never panics", t, func() {
		So(func() { Nop().Named("x").Warn(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
