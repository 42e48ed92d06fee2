package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/aanand-mishra/records-api/internal/config"
	"github.com/aanand-mishra/records-api/internal/http/middleware"
	"github.com/aanand-mishra/records-api/internal/logger"
	"github.com/aanand-mishra/records-api/internal/metrics"
	"github.com/aanand-mishra/records-api/internal/storage/memory"
	"github.com/aanand-mishra/records-api/internal/storage/sqlite"
	"github.com/aanand-mishra/records-api/internal/types"
	"github.com/aanand-mishra/records-api/internal/utils/response"
)

func call(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestScenario(t *testing.T) {
	Convey("Given the assembled service on an in-memory store", t, func() {
		store := memory.New()
		m := metrics.New(store.Count)
		h := NewHandler(store, Options{Logger: logger.Nop(), Metrics: m})

		Convey("The CRUD walkthrough behaves end to end", func() {
			w := call(h, http.MethodPost, "/records", `{"name":"Alice","age":29}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldEqual, "{\"id\":1,\"name\":\"Alice\",\"age\":29}\n")

			w = call(h, http.MethodPost, "/records", `{"name":"Bob","age":34}`)
			So(w.Code, ShouldEqual, http.StatusCreated)

			w = call(h, http.MethodGet, "/records", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var list []types.Record
			So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
			So(list, ShouldResemble, []types.Record{{ID: 1, Name: "Alice", Age: 29}, {ID: 2, Name: "Bob", Age: 34}})

			w = call(h, http.MethodPatch, "/records/1", `{"age":30}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "{\"id\":1,\"name\":\"Alice\",\"age\":30}\n")

			So(call(h, http.MethodDelete, "/records/2", "").Code, ShouldEqual, http.StatusNoContent)
			So(call(h, http.MethodGet, "/records/2", "").Code, ShouldEqual, http.StatusNotFound)
			So(call(h, http.MethodDelete, "/records/2", "").Code, ShouldEqual, http.StatusNotFound)

			Convey("And the metrics reflect it", func() {
				w := call(h, http.MethodGet, "/metrics", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "records_store_records 1")
				So(w.Body.String(), ShouldContainSubstring,
					`records_api_http_requests_total{method="DELETE",route="DELETE /records/{id}",status_code="404"} 1`)
			})
		})

		Convey("Unknown routes are a JSON 404", func() {
			for _, req := range []struct{ method, path string }{
				{http.MethodGet, "/users"},
				{http.MethodPut, "/records/1"},
				{http.MethodPost, "/records/1"},
			} {
				w := call(h, req.method, req.path, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				var resp response.Response
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Error, ShouldStartWith, "route not found")
			}
		})

		Convey("Every response carries a request id", func() {
			w := call(h, http.MethodGet, "/healthz", "")
			So(w.Header().Get(middleware.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("The index lists the metrics route", func() {
			w := call(h, http.MethodGet, "/", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"pattern":"/metrics"`)
			So(w.Body.String(), ShouldContainSubstring, `"pattern":"/records/{id}"`)
		})
	})

	Convey("Given the service without metrics", t, func() {
		h := NewHandler(memory.New(), Options{Logger: logger.Nop()})

		Convey("/metrics is not routed", func() {
			So(call(h, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOpenStorage(t *testing.T) {
	Convey("OpenStorage", t, func() {
		Convey("defaults to memory", func() {
			s, err := OpenStorage(config.Storage{Backend: config.BackendMemory})
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, &memory.Store{})
		})

		Convey("opens sqlite at the configured path", func() {
			path := filepath.Join(t.TempDir(), "records.db")
			s, err := OpenStorage(config.Storage{Backend: config.BackendSQLite, Path: path})
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, &sqlite.SQLite{})
			So(s.Close(), ShouldBeNil)
		})

		Convey("rejects unknown backends", func() {
			_, err := OpenStorage(config.Storage{Backend: "redis"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSeed(t *testing.T) {
	Convey("Given a seed file", t, func() {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		So(os.WriteFile(path, []byte("- name: Alice\n  age: 29\n- name: Bob\n  age: 34\n"), 0o600), ShouldBeNil)
		store := memory.New()

		Convey("it fills an empty store once", func() {
			n, err := Seed(context.Background(), store, path)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			n, err = Seed(context.Background(), store, path)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})

		Convey("an empty path is a no-op", func() {
			n, err := Seed(context.Background(), store, "")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Run", t, func() {
		cfg := &config.Config{
			Env:     "dev",
			Storage: config.Storage{Backend: config.BackendMemory},
			HTTPServer: config.HTTPServer{
				Addr:            "127.0.0.1:0",
				ReadTimeout:     time.Second,
				WriteTimeout:    time.Second,
				IdleTimeout:     time.Second,
				ShutdownTimeout: time.Second,
			},
		}

		Convey("stops cleanly when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- Run(ctx, cfg, logger.Nop()) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(5 * time.Second):
				So("Run still running after cancel", ShouldBeEmpty)
			}
		})

		Convey("reports a listener failure", func() {
			cfg.Addr = "not-an-address"
			err := Run(context.Background(), cfg, logger.Nop())
			So(err, ShouldNotBeNil)
		})

		Convey("fails on a missing seed file", func() {
			cfg.SeedPath = filepath.Join(t.TempDir(), "missing.yaml")
			err := Run(context.Background(), cfg, logger.Nop())
			So(err, ShouldNotBeNil)
		})
	})
}
