package rawfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/sleeplab/internal/adapters/rawfile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecode(t *testing.T) {
	Convey("Given raw documents", t, func() {
		Convey("When the document is well formed", func() {
			records, err := rawfile.Decode(strings.NewReader(`{
				"data": [
					{"id": "a", "day": "2024-01-01", "time_in_bed": 30000,
					 "hrv": {"interval": 300, "items": [40, null]}, "extra": true},
					{"id": "b", "day": "2024-01-02", "average_hrv": null}
				],
				"next_token": null
			}`))

			Convey("Then every record is decoded", func() {
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 2)
				So(records[0].ID, ShouldEqual, "a")
				So(*records[0].TimeInBed, ShouldEqual, 30000.0)
				So(records[1].AverageHRV, ShouldBeNil)
				So(records[1].TimeInBed, ShouldBeNil)
			})
		})

		Convey("When data is empty", func() {
			records, err := rawfile.Decode(strings.NewReader(`{"data": []}`))

			Convey("Then no records are returned", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		for _, doc := range []string{`[]`, `{}`, `{"data": {}}`, `{"data": null}`, `not json`, `{"data": [1]}`} {
			Convey("When the document is "+doc, func() {
				_, err := rawfile.Decode(strings.NewReader(doc))

				Convey("Then it is rejected as malformed", func() {
					So(errors.Is(err, rawfile.ErrMalformed), ShouldBeTrue)
				})
			})
		}
	})
}

func TestLoad(t *testing.T) {
	Convey("Given files on disk", t, func() {
		dir := t.TempDir()

		Convey("When the file is missing", func() {
			_, err := rawfile.Load(filepath.Join(dir, "none.json"))

			Convey("Then a not found error is returned", func() {
				So(errors.Is(err, rawfile.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the file exists", func() {
			path := filepath.Join(dir, "data_sleep.json")
			So(os.WriteFile(path, []byte(`{"data":[{"id":"x","day":"2024-05-05"}]}`), 0o600), ShouldBeNil)
			records, err := rawfile.Load(path)

			Convey("Then it is decoded", func() {
				So(err, ShouldBeNil)
				So(records[0].Day, ShouldEqual, "2024-05-05")
			})
		})
	})
}
