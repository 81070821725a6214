package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/okian/regmatrix/internal/domain/model"
	"github.com/okian/regmatrix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSiteHandler(t *testing.T) {
	_ = logger.Init()

	Convey("Given a site registered under the project base path", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		Register(ctx, mux, "/ai-regulations-matrix")

		Convey("When requesting a data snapshot", func() {
			w := serve(mux, http.MethodGet, "/ai-regulations-matrix/data/regulations.json")

			Convey("Then it is served as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var regs []model.Regulation
				So(json.Unmarshal(w.Body.Bytes(), &regs), ShouldBeNil)
				So(len(regs), ShouldBeGreaterThan, 0)
				So(regs[0].ID, ShouldEqual, 1)
			})
		})

		Convey("When requesting the root of the base path", func() {
			w := serve(mux, http.MethodGet, "/ai-regulations-matrix/")

			Convey("Then the page shell is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "AI Regulations Matrix")
			})
		})

		Convey("When requesting the base path without a trailing slash", func() {
			w := serve(mux, http.MethodGet, "/ai-regulations-matrix")

			Convey("Then it redirects to the slash form", func() {
				So(w.Code, ShouldEqual, http.StatusMovedPermanently)
				So(w.Header().Get("Location"), ShouldEqual, "/ai-regulations-matrix/")
			})
		})

		Convey("When requesting a client-side route", func() {
			for _, route := range []string{"governance", "resources", "feedback", "no/such/page"} {
				w := serve(mux, http.MethodGet, "/ai-regulations-matrix/"+route)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "<div id=\"root\">")
			}
		})

		Convey("When requesting a missing file", func() {
			w := serve(mux, http.MethodGet, "/ai-regulations-matrix/data/missing.json")

			Convey("Then it is a 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When requesting outside the base path", func() {
			w := serve(mux, http.MethodGet, "/data/regulations.json")

			Convey("Then it is a 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When writing to the host", func() {
			for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
				w := serve(mux, m, "/ai-regulations-matrix/data/regulations.json")

				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, "GET, HEAD")
			}
		})

		Convey("When sending HEAD", func() {
			w := serve(mux, http.MethodHead, "/ai-regulations-matrix/data/governance.json")

			Convey("Then it succeeds without a body", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When scraping /healthz", func() {
			_ = serve(mux, http.MethodGet, "/ai-regulations-matrix/data/resources.json")
			w := serve(mux, http.MethodGet, "/healthz")

			Convey("Then request metrics are exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "regmatrix_site_http_requests_total")
			})
		})
	})

	Convey("Given a site registered at the root", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux, "")

		Convey("Then snapshots live at /data", func() {
			w := serve(mux, http.MethodGet, "/data/governance.json")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})

	Convey("Given a nil mux", t, func() {
		Convey("Then Register panics", func() {
			So(func() { Register(context.Background(), nil, "") }, ShouldPanicWith, "mux is nil")
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given the bundled snapshots", t, func() {
		Convey("Then each decodes into its model", func() {
			raw, err := Snapshot("regulations")
			So(err, ShouldBeNil)
			var regs []model.Regulation
			So(json.Unmarshal(raw, &regs), ShouldBeNil)

			raw, err = Snapshot("governance")
			So(err, ShouldBeNil)
			var gov []model.GovernanceFramework
			So(json.Unmarshal(raw, &gov), ShouldBeNil)
			So(gov[0].Principles, ShouldNotBeEmpty)

			raw, err = Snapshot("resources")
			So(err, ShouldBeNil)
			var res []model.Resource
			So(json.Unmarshal(raw, &res), ShouldBeNil)
			So(strings.HasPrefix(res[0].URL, "https://"), ShouldBeTrue)
		})

		Convey("And unknown snapshots fail", func() {
			_, err := Snapshot("feedback")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(405), ShouldEqual, "method_not_allowed")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(404), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestHealthHandler(t *testing.T) {
	Convey("Given a bundle missing a snapshot", t, func() {
		fsys := fstest.MapFS{
			"data/regulations.json": {Data: []byte(`[]`)},
			"data/governance.json":  {Data: []byte(`[]`)},
		}
		w := httptest.NewRecorder()
		NewHealthHandler(fsys).HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		Convey("Then the host reports unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "snapshot resources")
		})
	})

	Convey("Given a snapshot that is not a JSON array", t, func() {
		fsys := fstest.MapFS{
			"data/regulations.json": {Data: []byte(`[]`)},
			"data/governance.json":  {Data: []byte(`{"oops":true}`)},
			"data/resources.json":   {Data: []byte(`[]`)},
		}
		w := httptest.NewRecorder()
		NewHealthHandler(fsys).HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		Convey("Then the host reports unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "snapshot governance")
		})
	})

	Convey("Given the embedded bundle", t, func() {
		So(checkSnapshots(contentFS()), ShouldBeNil)
	})
}
