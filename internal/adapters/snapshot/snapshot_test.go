package snapshot_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/sleeplab/internal/adapters/snapshot"
	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
	. "github.com/smartystreets/goconvey/convey"
)

const rawDoc = `[
	{"id":"b","day":"2024-01-02","bedtime_start":"2024-01-02T22:10:00+01:00","bedtime_end":"2024-01-03T06:40:12+01:00",
	 "time_in_bed":30600,"total_sleep_duration":27000,"rem_sleep_duration":6000,"deep_sleep_duration":5000,
	 "light_sleep_duration":16000,"average_heart_rate":52.5,"average_hrv":70,"type":"long_sleep",
	 "sleep_algorithm_version":"v2","readiness":{"score":81,"temperature_deviation":0.12}},
	{"id":"a","day":"2024-01-01","bedtime_start":"2024-01-02T00:15:00+01:00","time_in_bed":18000,
	 "total_sleep_duration":0,"type":"long_sleep"},
	{"id":"nap","day":"2024-01-01","time_in_bed":1200,"type":"rest"}
]`

func run() *prep.Result {
	var records []model.RawNightRecord
	if err := json.Unmarshal([]byte(rawDoc), &records); err != nil {
		panic(err)
	}
	p, err := prep.New()
	if err != nil {
		panic(err)
	}
	res, err := p.Prepare(context.Background(), records)
	if err != nil {
		panic(err)
	}
	return res
}

func TestEncodeTSV(t *testing.T) {
	Convey("Given a table", t, func() {
		tbl := snapshot.Table{
			Header: []string{"day", "readiness", "score"},
			Rows: [][]string{
				{"2024-01-01", `{"score":1}`, ""},
				{"2024-01-02", "", "7.5"},
			},
		}

		Convey("When encoded", func() {
			data, err := snapshot.EncodeTSV(tbl)

			Convey("Then cells are tab separated with newline endings", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "day\treadiness\tscore\n"+
					"2024-01-01\t\"{\"\"score\"\":1}\"\t\n"+
					"2024-01-02\t\t7.5\n")
			})
		})
	})
}

func TestStage(t *testing.T) {
	Convey("Given a prepared run", t, func() {
		res := run()
		dir := t.TempDir()
		orig := filepath.Join(dir, "data", "data_sleep_orig.tsv")
		modified := filepath.Join(dir, "data", "data_sleep_modified.tsv")

		files, err := snapshot.Stage(res, orig, modified)
		So(err, ShouldBeNil)
		So(snapshot.Commit(files), ShouldBeNil)

		Convey("Then the pre-derivation snapshot keeps raw columns", func() {
			data, err := os.ReadFile(orig)
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
			So(len(lines), ShouldEqual, 3)
			So(lines[0], ShouldStartWith, "day\tid\taverage_breath\taverage_heart_rate\taverage_hrv")
			So(lines[1], ShouldStartWith, "2024-01-01\ta\t")
			So(lines[2], ShouldContainSubstring, "2024-01-03 06:40:12\t2024-01-02 22:10:00")
			So(lines[2], ShouldContainSubstring, `"{""score"":81,""temperature_deviation"":0.12}"`)
		})

		Convey("Then the derived snapshot has one row per day in column order", func() {
			data, err := os.ReadFile(modified)
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
			So(lines[0], ShouldEqual, strings.Join(model.ColumnNames(), "\t"))
			So(len(lines), ShouldEqual, 3)

			first := strings.Split(lines[1], "\t")
			So(first[0], ShouldEqual, "2024-01-01")
			So(first[len(first)-2], ShouldEqual, "0.3")
			So(first[len(first)-5], ShouldEqual, "")

			second := strings.Split(lines[2], "\t")
			So(second[len(second)-2], ShouldEqual, "-1.8")
			So(second[len(second)-1], ShouldEqual, "6.7")
		})

		Convey("Then no temporary files remain", func() {
			entries, err := os.ReadDir(filepath.Join(dir, "data"))
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
		})

		Convey("When the same raw input is prepared again", func() {
			before, _ := os.ReadFile(modified)
			beforeOrig, _ := os.ReadFile(orig)
			again, err := snapshot.Stage(run(), orig, modified)
			So(err, ShouldBeNil)
			So(snapshot.Commit(again), ShouldBeNil)

			Convey("Then both snapshots are byte-identical", func() {
				after, _ := os.ReadFile(modified)
				afterOrig, _ := os.ReadFile(orig)
				So(bytes.Equal(before, after), ShouldBeTrue)
				So(bytes.Equal(beforeOrig, afterOrig), ShouldBeTrue)
			})
		})
	})
}

func TestWriteFileAtomic(t *testing.T) {
	Convey("Given an existing export", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.tsv")
		So(os.WriteFile(path, []byte("old"), 0o600), ShouldBeNil)

		Convey("When the target directory cannot be created", func() {
			blocker := filepath.Join(dir, "file")
			So(os.WriteFile(blocker, nil, 0o600), ShouldBeNil)
			err := snapshot.Commit([]snapshot.File{
				{Kind: snapshot.KindOrig, Path: filepath.Join(blocker, "x.tsv"), Data: []byte("new")},
				{Kind: snapshot.KindModified, Path: path, Data: []byte("new")},
			})

			Convey("Then commit stops and earlier content survives", func() {
				So(errors.Is(err, snapshot.ErrWrite), ShouldBeTrue)
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "old")
			})
		})

		Convey("When a later file of the set cannot be written", func() {
			blocker := filepath.Join(dir, "file")
			So(os.WriteFile(blocker, nil, 0o600), ShouldBeNil)
			err := snapshot.Commit([]snapshot.File{
				{Kind: snapshot.KindOrig, Path: path, Data: []byte("new")},
				{Kind: snapshot.KindModified, Path: filepath.Join(blocker, "x.tsv"), Data: []byte("new")},
			})

			Convey("Then the earlier file is not replaced either", func() {
				So(errors.Is(err, snapshot.ErrWrite), ShouldBeTrue)
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "old")
			})

			Convey("And no temporary file is left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				names := make([]string, 0, len(entries))
				for _, e := range entries {
					names = append(names, e.Name())
				}
				So(names, ShouldResemble, []string{"file", "out.tsv"})
			})
		})

		Convey("When replaced", func() {
			So(snapshot.WriteFileAtomic(path, []byte("new")), ShouldBeNil)

			Convey("Then the new content is in place", func() {
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "new")
			})
		})
	})
}

func TestWorkbook(t *testing.T) {
	Convey("Given a prepared run", t, func() {
		res := run()

		Convey("When encoded as a workbook", func() {
			data, err := snapshot.EncodeWorkbook(res.Dataset)
			So(err, ShouldBeNil)

			Convey("Then the sheet holds the header and every night", func() {
				f, err := excelize.OpenReader(bytes.NewReader(data))
				So(err, ShouldBeNil)
				defer func() { _ = f.Close() }()

				rows, err := f.GetRows(snapshot.SheetName)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0][0], ShouldEqual, "day")
				So(rows[1][0], ShouldEqual, "2024-01-01")
				So(rows[2][0], ShouldEqual, "2024-01-02")
				So(f.GetSheetList(), ShouldResemble, []string{snapshot.SheetName})
			})
		})

		Convey("When staged", func() {
			file, err := snapshot.StageWorkbook(res.Dataset, "out/sleep.xlsx")

			Convey("Then it is labelled as a workbook", func() {
				So(err, ShouldBeNil)
				So(file.Kind, ShouldEqual, snapshot.KindWorkbook)
				So(len(file.Data), ShouldBeGreaterThan, 0)
			})
		})
	})
}
