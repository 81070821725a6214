package probe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/regmatrix/internal/adapters/http/site"
	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/internal/probe"
	"github.com/okian/regmatrix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func TestRunAgainstStaticHost(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given the snapshot host as a static deployment", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		mux := http.NewServeMux()
		site.Register(ctx, mux, deploy.DefaultBasePath)
		host := httptest.NewServer(mux)
		defer host.Close()

		cfg := &probe.Config{
			Origin: mustParse(host.URL),
			Deployment: deploy.Context{
				Production: true,
				Hostname:   "okian.github.io",
				BasePath:   deploy.DefaultBasePath,
			},
			Workers:  8,
			Feedback: "looks good",
		}

		Convey("When the probe runs", func() {
			stats, err := probe.Run(ctx, cfg)

			Convey("Then every page loads once over the network", func() {
				So(err, ShouldBeNil)
				So(stats.Mode, ShouldEqual, "static")
				So(stats.BasePath, ShouldEqual, "/ai-regulations-matrix")
				So(stats.PagesFailed, ShouldEqual, 0)
				So(stats.PagesRequested, ShouldEqual, 3*8+3)
				So(stats.PagesLoaded, ShouldEqual, stats.PagesRequested)
				So(stats.CacheEntries, ShouldEqual, 3)
				So(stats.NetworkRequests, ShouldBeBetweenOrEqual, 3, 3*8)
			})

			Convey("And the feedback is simulated", func() {
				So(stats.FeedbackSubmitted, ShouldBeTrue)
				So(stats.FeedbackSimulated, ShouldBeTrue)
				So(stats.FeedbackMessage, ShouldEqual, "operation simulated")
			})
		})
	})
}

func TestRunAgainstDynamicBackend(t *testing.T) {
	Convey("Given a live backend", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var feedbackPosts atomic.Int64
		var failGovernance atomic.Bool
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == "/api/feedback" {
				feedbackPosts.Add(1)
				_, _ = w.Write([]byte(`{"success":true,"message":"stored"}`))
				return
			}
			if failGovernance.Load() && r.URL.Path == "/api/governance" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			raw, err := site.Snapshot(strings.TrimPrefix(r.URL.Path, "/api/"))
			if err != nil {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(raw)
		}))
		defer backend.Close()

		cfg := &probe.Config{
			Origin:     mustParse(backend.URL),
			Deployment: deploy.Context{Hostname: "localhost"},
			Workers:    2,
			RPS:        1000,
			Feedback:   "ship it",
		}

		Convey("When the probe runs", func() {
			stats, err := probe.Run(ctx, cfg)

			Convey("Then pages load and the feedback is stored", func() {
				So(err, ShouldBeNil)
				So(stats.Mode, ShouldEqual, "dynamic")
				So(stats.PagesFailed, ShouldEqual, 0)
				So(stats.FeedbackSimulated, ShouldBeFalse)
				So(stats.FeedbackMessage, ShouldEqual, "stored")
				So(feedbackPosts.Load(), ShouldEqual, 1)
			})
		})

		Convey("When a page fails", func() {
			failGovernance.Store(true)
			stats, err := probe.Run(ctx, cfg)

			Convey("Then the failure is counted and reported", func() {
				So(errors.Is(err, probe.ErrPagesFailed), ShouldBeTrue)
				So(stats.PagesFailed, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given no origin", t, func() {
		Convey("Then the probe refuses to run", func() {
			_, err := probe.Run(context.Background(), &probe.Config{})
			So(errors.Is(err, probe.ErrNoOrigin), ShouldBeTrue)
		})
	})
}
