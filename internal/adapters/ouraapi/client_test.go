package ouraapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/sleeplab/internal/adapters/ouraapi"
	"github.com/okian/sleeplab/internal/adapters/rawfile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFetchSleep(t *testing.T) {
	Convey("Given a vendor API", t, func() {
		var gotAuth, gotPath, gotStart string
		status := http.StatusOK
		body := `{"data":[{"id":"a","day":"2024-01-01","time_in_bed":30000}],"next_token":null}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			gotStart = r.URL.Query().Get("start_date")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		client, err := ouraapi.New(srv.URL+"/", "secret\n", ouraapi.WithTimeout(time.Second))
		So(err, ShouldBeNil)
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		Convey("When the request succeeds", func() {
			data, err := client.FetchSleep(context.Background(), start)

			Convey("Then the bearer token and start date are sent", func() {
				So(err, ShouldBeNil)
				So(gotAuth, ShouldEqual, "Bearer secret")
				So(gotPath, ShouldEqual, ouraapi.SleepPath)
				So(gotStart, ShouldEqual, "2024-01-01")
				So(string(data), ShouldEqual, body)
			})

			Convey("Then the saved document is indented and readable", func() {
				path := filepath.Join(t.TempDir(), "data", "data_sleep.json")
				So(ouraapi.Save(path, data), ShouldBeNil)
				saved, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(saved), ShouldStartWith, "{\n \"data\": [\n  {\n   \"id\": \"a\",")
				records, err := rawfile.Load(path)
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
			})
		})

		Convey("When the API rejects the token", func() {
			status = http.StatusUnauthorized
			body = `{"detail":"unauthorized"}`
			_, err := client.FetchSleep(context.Background(), start)

			Convey("Then a request error is returned", func() {
				So(errors.Is(err, ouraapi.ErrRequest), ShouldBeTrue)
			})
		})

		Convey("When the body has no data list", func() {
			body = `{"items":[]}`
			_, err := client.FetchSleep(context.Background(), start)

			Convey("Then the response is rejected", func() {
				So(errors.Is(err, ouraapi.ErrResponse), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := client.FetchSleep(ctx, start)

			Convey("Then no retry hides the failure", func() {
				So(errors.Is(err, ouraapi.ErrRequest), ShouldBeTrue)
			})
		})
	})
}

func TestToken(t *testing.T) {
	Convey("Given token files", t, func() {
		dir := t.TempDir()

		Convey("When the file is missing", func() {
			_, err := ouraapi.ReadToken(filepath.Join(dir, "token.txt"))
			So(errors.Is(err, ouraapi.ErrNoToken), ShouldBeTrue)
		})

		Convey("When the file is blank", func() {
			path := filepath.Join(dir, "blank.txt")
			So(os.WriteFile(path, []byte("  \n"), 0o600), ShouldBeNil)
			_, err := ouraapi.ReadToken(path)
			So(errors.Is(err, ouraapi.ErrNoToken), ShouldBeTrue)
		})

		Convey("When the file holds a token", func() {
			path := filepath.Join(dir, "token.txt")
			So(os.WriteFile(path, []byte("abc123\n"), 0o600), ShouldBeNil)
			token, err := ouraapi.ReadToken(path)
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "abc123")
		})

		Convey("When a client is built without a token", func() {
			_, err := ouraapi.New("http://localhost", " ")
			So(errors.Is(err, ouraapi.ErrNoToken), ShouldBeTrue)
		})
	})
}
