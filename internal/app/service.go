// Package service provides the dashboard service: page data read through the
// query cache and writes sent through the data-access router.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/regmatrix/internal/adapters/http/dataaccess"
	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/internal/domain/model"
	"github.com/okian/regmatrix/internal/domain/query"
	"github.com/okian/regmatrix/pkg/logger"
)

// Service backs the dashboard pages.
type Service struct {
	deployment deploy.Provider
	router     *dataaccess.Router
	queries    *query.Client
	notifier   Notifier

	// Configuration
	client         dataaccess.Doer
	origin         *url.URL
	staleTime      time.Duration
	onUnauthorized dataaccess.UnauthorizedBehavior

	logger logger.Logger
}

// View is a page together with the data it renders.
type View struct {
	Page Page
	Data any
}

// New constructs a Service that classifies every call with deployment.
func New(deployment deploy.Provider, opts ...Option) *Service {
	s := &Service{
		deployment: deployment,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger.Named("notice"))
	}

	s.router = dataaccess.NewRouter(deployment,
		dataaccess.WithHTTPClient(s.client),
		dataaccess.WithOrigin(s.origin),
		dataaccess.WithLogger(s.logger.Named("dataaccess")),
	)
	s.queries = query.NewClient(
		query.Fetcher(s.router.Reader(dataaccess.ReaderOptions{OnUnauthorized: s.onUnauthorized})),
		query.WithStaleTime(s.staleTime),
		query.WithLogger(s.logger.Named("query")),
	)
	return s
}

// Router exposes the data-access router for direct logical calls.
func (s *Service) Router() *dataaccess.Router {
	return s.router
}

// Deployment returns the current deployment context.
func (s *Service) Deployment(ctx context.Context) deploy.Context {
	return s.deployment.Deployment(ctx)
}

// Regulations returns the regulation matrix.
func (s *Service) Regulations(ctx context.Context) ([]model.Regulation, error) {
	return list[model.Regulation](ctx, s.queries, RegulationsPath)
}

// Governance returns the governance frameworks.
func (s *Service) Governance(ctx context.Context) ([]model.GovernanceFramework, error) {
	return list[model.GovernanceFramework](ctx, s.queries, GovernancePath)
}

// Resources returns the further-reading links.
func (s *Service) Resources(ctx context.Context) ([]model.Resource, error) {
	return list[model.Resource](ctx, s.queries, ResourcesPath)
}

func list[T any](ctx context.Context, q *query.Client, path string) ([]T, error) {
	v, err := query.Get[[]T](ctx, q, path)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return *v, nil
}

// Match resolves route against the page table, honoring the base path of
// the current deployment.
func (s *Service) Match(ctx context.Context, route string) (Page, bool) {
	return Match(route, s.deployment.Deployment(ctx).ResolvedBasePath())
}

// PageData returns the page for route and the data it shows. Unknown routes
// yield NotFoundPage and ErrNotFound.
func (s *Service) PageData(ctx context.Context, route string) (View, error) {
	page, ok := s.Match(ctx, route)
	if !ok {
		return View{Page: page}, fmt.Errorf("%w: %s", ErrNotFound, route)
	}

	var (
		data any
		err  error
	)
	switch page.DataPath {
	case RegulationsPath:
		data, err = s.Regulations(ctx)
	case GovernancePath:
		data, err = s.Governance(ctx)
	case ResourcesPath:
		data, err = s.Resources(ctx)
	case "":
	default:
		data, err = s.queries.Fetch(ctx, page.DataPath)
	}
	if err != nil {
		return View{Page: page}, err
	}
	return View{Page: page, Data: data}, nil
}

// SubmitFeedback sends content to the feedback endpoint and notifies the
// outcome. Blank content is rejected without a call.
func (s *Service) SubmitFeedback(ctx context.Context, content string) (*model.WriteAck, error) {
	if strings.TrimSpace(content) == "" {
		s.notifier.Notify(ctx, Notice{
			Title:       "Empty feedback",
			Description: "Please enter your feedback before submitting.",
			Variant:     VariantDestructive,
		})
		return nil, ErrEmptyFeedback
	}

	env, err := s.router.Send(ctx, dataaccess.MethodPost, FeedbackPath, model.Feedback{Content: content})
	if err != nil {
		s.notifier.Notify(ctx, Notice{
			Title:       "Error submitting feedback",
			Description: err.Error(),
			Variant:     VariantDestructive,
		})
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	ack := model.WriteAck{Success: true}
	if len(env.Body) > 0 {
		if err := env.Decode(&ack); err != nil {
			s.logger.Debug(ctx, "feedback response is not an acknowledgement",
				logger.Int("status", env.Status),
				logger.Error(err),
			)
			ack = model.WriteAck{Success: true}
		}
	}

	if s.deployment.Deployment(ctx).IsStatic() {
		s.notifier.Notify(ctx, Notice{
			Title:       "Feedback submitted (Demo)",
			Description: "This is a demo on a static host. In a real environment, your feedback would be saved to the database.",
			Variant:     VariantDefault,
		})
		return &ack, nil
	}

	s.notifier.Notify(ctx, Notice{
		Title:       "Feedback submitted",
		Description: "Thank you for your feedback!",
		Variant:     VariantDefault,
	})
	return &ack, nil
}

// Refresh drops the cached data behind route so the next read fetches it.
func (s *Service) Refresh(ctx context.Context, route string) error {
	page, ok := s.Match(ctx, route)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, route)
	}
	if page.DataPath != "" {
		s.queries.Invalidate(ctx, page.DataPath)
	}
	return nil
}

// InvalidateAll drops every cached read and returns how many there were.
func (s *Service) InvalidateAll(ctx context.Context) int {
	return s.queries.InvalidateAll(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	d := s.deployment.Deployment(context.Background())
	return map[string]interface{}{
		"mode":          d.Mode().String(),
		"basePath":      d.ResolvedBasePath(),
		"hostname":      d.Hostname,
		"cachedQueries": s.queries.Len(),
		"staleTime":     s.staleTime.String(),
	}
}
