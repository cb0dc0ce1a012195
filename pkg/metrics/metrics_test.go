package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and names", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("prep"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the given names", func() {
				So(manager.Registry(), ShouldEqual, registry)
				manager.recordsRead.Add(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_prep_records_read_total"], ShouldBeTrue)
			})
		})

		Convey("When two managers use separate registries", func() {
			Convey("Then registration does not collide", func() {
				So(func() {
					NewManager()
					NewManager()
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline counters", func() {
			before := testutil.ToFloat64(globalManager.recordsRead)
			RecordRecordsRead(5)
			RecordRecordsFiltered(2)
			UpdateRows(3)

			Convey("Then the values are visible", func() {
				So(testutil.ToFloat64(globalManager.recordsRead)-before, ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.rowsEmitted), ShouldEqual, 3)
			})
		})

		Convey("When recording missing cells", func() {
			before := testutil.ToFloat64(globalManager.missingCells.WithLabelValues("score"))
			RecordMissingCells("score", 4)
			RecordMissingCells("score", 0)

			Convey("Then only positive counts are added", func() {
				after := testutil.ToFloat64(globalManager.missingCells.WithLabelValues("score"))
				So(after-before, ShouldEqual, 4)
			})
		})

		Convey("When recording the remaining metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordDuplicateDay()
					RecordStageDuration("derive", 1.5)
					RecordSnapshotWrite("orig")
					RecordPipelineFailure("load")
					UpdateLastSuccess(1700000000)
					UpdateCorrelation("start of sleep", "HR average", 0.42)
					RecordFetchDuration(120)
					RecordFetchError()
					RecordDatasetReload("ok")
					RecordHTTPRequest("nights", "GET", "200")
					RecordHTTPRequestDuration("nights", "GET", "200", 3)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a textfile target", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "sleeplab.prom")
		RecordRecordsRead(1)

		Convey("When exporting", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				body, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "sleeplab_pipeline_records_read_total")
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "x.prom"))

			Convey("Then an export error is returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})

		Convey("GetRegistry exposes the shared registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
