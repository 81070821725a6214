package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/regmatrix/internal/adapters/http/dataaccess"
	service "github.com/okian/regmatrix/internal/app"
	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/internal/domain/model"
	"github.com/okian/regmatrix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// recordingNotifier keeps every notice.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []service.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice service.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) last() service.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return service.Notice{}
	}
	return n.notices[len(n.notices)-1]
}

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func dynamicAt(host string) deploy.Provider {
	return deploy.Fixed(deploy.Context{Hostname: host, BasePath: deploy.DefaultBasePath})
}

func staticAt(host string) deploy.Provider {
	return deploy.Fixed(deploy.Context{Production: true, Hostname: host, BasePath: deploy.DefaultBasePath})
}

func TestMatch(t *testing.T) {
	Convey("Given the page table", t, func() {
		Convey("Then known routes resolve to their data paths", func() {
			cases := map[string]string{
				"/":            service.RegulationsPath,
				"/governance":  service.GovernancePath,
				"/resources/":  service.ResourcesPath,
				"/feedback":    "",
				"/governance?": service.GovernancePath,
				"":             service.RegulationsPath,
			}
			for route, want := range cases {
				p, ok := service.Match(route, "")
				So(ok, ShouldBeTrue)
				So(p.DataPath, ShouldEqual, want)
			}
		})

		Convey("And the base path is stripped when present", func() {
			p, ok := service.Match("/ai-regulations-matrix/governance", "/ai-regulations-matrix")
			So(ok, ShouldBeTrue)
			So(p.Name, ShouldEqual, "Governance")

			p, ok = service.Match("/ai-regulations-matrix", "/ai-regulations-matrix")
			So(ok, ShouldBeTrue)
			So(p.Name, ShouldEqual, "Dashboard")
		})

		Convey("And unknown routes are not found", func() {
			for _, route := range []string{"/nope", "/governance/extra", "/ai-regulations-matrixx"} {
				p, ok := service.Match(route, "/ai-regulations-matrix")
				So(ok, ShouldBeFalse)
				So(p, ShouldResemble, service.NotFoundPage)
			}
		})

		Convey("And Pages returns a copy", func() {
			ps := service.Pages()
			So(ps, ShouldHaveLength, 4)
			ps[0].Path = "/changed"
			So(service.Pages()[0].Path, ShouldEqual, "/")
		})
	})
}

func TestSubmitFeedback(t *testing.T) {
	Convey("Given a dashboard service", t, func() {
		ctx := context.Background()
		var calls atomic.Int64
		var status atomic.Int64
		status.Store(http.StatusOK)
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if code := int(status.Load()); code != http.StatusOK {
				w.WriteHeader(code)
				_, _ = w.Write([]byte("storage down"))
				return
			}
			_, _ = w.Write([]byte(`{"success":true,"message":"stored"}`))
		}))
		defer backend.Close()

		notes := &recordingNotifier{}

		Convey("When the content is blank", func() {
			svc := service.New(dynamicAt("localhost"), service.WithOrigin(mustParse(backend.URL)), service.WithNotifier(notes))
			ack, err := svc.SubmitFeedback(ctx, " \n\t ")

			Convey("Then it is rejected without a call", func() {
				So(ack, ShouldBeNil)
				So(errors.Is(err, service.ErrEmptyFeedback), ShouldBeTrue)
				So(calls.Load(), ShouldEqual, 0)
				So(notes.last(), ShouldResemble, service.Notice{
					Title:       "Empty feedback",
					Description: "Please enter your feedback before submitting.",
					Variant:     service.VariantDestructive,
				})
			})
		})

		Convey("When the backend accepts it", func() {
			svc := service.New(dynamicAt("localhost"), service.WithOrigin(mustParse(backend.URL)), service.WithNotifier(notes))
			ack, err := svc.SubmitFeedback(ctx, "great matrix")

			Convey("Then the acknowledgement is returned and a success notice shown", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff(&model.WriteAck{Success: true, Message: "stored"}, ack), ShouldBeEmpty)
				So(calls.Load(), ShouldEqual, 1)
				So(notes.last().Title, ShouldEqual, "Feedback submitted")
				So(notes.last().Description, ShouldEqual, "Thank you for your feedback!")
			})
		})

		Convey("When the backend fails", func() {
			status.Store(http.StatusInternalServerError)
			svc := service.New(dynamicAt("localhost"), service.WithOrigin(mustParse(backend.URL)), service.WithNotifier(notes))
			_, err := svc.SubmitFeedback(ctx, "great matrix")

			Convey("Then the error notice carries the status message", func() {
				So(errors.Is(err, dataaccess.ErrStatus), ShouldBeTrue)
				So(notes.last().Title, ShouldEqual, "Error submitting feedback")
				So(notes.last().Description, ShouldEqual, "500: storage down")
				So(notes.last().Variant, ShouldEqual, service.VariantDestructive)
			})
		})

		Convey("When deployed on the static host", func() {
			svc := service.New(staticAt("okian.github.io"), service.WithOrigin(mustParse(backend.URL)), service.WithNotifier(notes))
			ack, err := svc.SubmitFeedback(ctx, "great matrix")

			Convey("Then the write is simulated and the demo notice shown", func() {
				So(err, ShouldBeNil)
				So(ack.Success, ShouldBeTrue)
				So(ack.Message, ShouldEqual, "operation simulated")
				So(calls.Load(), ShouldEqual, 0)
				So(notes.last().Title, ShouldEqual, "Feedback submitted (Demo)")
			})
		})
	})
}

func TestLogNotifier(t *testing.T) {
	Convey("Given the default notifier", t, func() {
		var buf bytes.Buffer
		n := service.NewLogNotifier(logger.New(&buf, slog.LevelInfo))

		Convey("Then notices are written to the log", func() {
			n.Notify(context.Background(), service.Notice{Title: "Feedback submitted", Description: "thanks"})
			n.Notify(context.Background(), service.Notice{Title: "Empty feedback", Variant: service.VariantDestructive})
			out := buf.String()
			So(out, ShouldContainSubstring, "level=INFO")
			So(out, ShouldContainSubstring, "level=WARN")
			So(out, ShouldContainSubstring, `title="Feedback submitted"`)
		})
	})

	Convey("Given a notifier func", t, func() {
		var got service.Notice
		n := service.NotifierFunc(func(_ context.Context, notice service.Notice) { got = notice })
		n.Notify(context.Background(), service.Notice{Title: "x"})

		Convey("Then it is called", func() {
			So(got.Title, ShouldEqual, "x")
		})
	})
}
