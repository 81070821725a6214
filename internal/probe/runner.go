package probe

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/regmatrix/internal/adapters/http/dataaccess"
	service "github.com/okian/regmatrix/internal/app"
	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/internal/domain/model"
	"github.com/okian/regmatrix/pkg/logger"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers       = 4
	percentageMultiplier = 100
)

// Run executes the complete probe and returns its statistics. Page and
// feedback failures are counted in the stats and reported as an error.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Origin == nil {
		return nil, ErrNoOrigin
	}
	workers := config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	log := logger.Get().Named("probe")
	stats := &Stats{
		StartTime: time.Now(),
		Mode:      config.Deployment.Mode().String(),
		BasePath:  config.Deployment.ResolvedBasePath(),
	}

	log.Info(ctx, "starting dashboard probe",
		logger.String("origin", config.Origin.String()),
		logger.String("mode", stats.Mode),
		logger.String("basePath", stats.BasePath),
		logger.Int("workers", workers),
		logger.Float64("rps", config.RPS),
		logger.Bool("feedback", config.Feedback != ""),
	)

	client := newCountingClient()
	defer client.Close()

	svc := service.New(deploy.Fixed(config.Deployment),
		service.WithLogger(log),
		service.WithHTTPClient(client),
		service.WithOrigin(config.Origin),
		service.WithStaleTime(config.StaleTime),
	)

	limit := rate.Inf
	if config.RPS > 0 {
		limit = rate.Limit(config.RPS)
	}
	limiter := rate.NewLimiter(limit, 1)

	// Step 1: Cold pass, every page read concurrently by several workers
	if err := loadPages(ctx, svc, limiter, workers, stats); err != nil {
		return stats, fmt.Errorf("cold pass: %w", err)
	}
	coldRequests := client.Requests()

	// Step 2: Warm pass, served from the cache
	if err := loadPages(ctx, svc, limiter, 1, stats); err != nil {
		return stats, fmt.Errorf("warm pass: %w", err)
	}
	warmRequests := client.Requests() - coldRequests

	// Step 3: Feedback
	var feedbackErr error
	if config.Feedback != "" {
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		feedbackErr = submitFeedback(ctx, svc, config.Feedback, stats)
	}

	stats.NetworkRequests = client.Requests()
	stats.CacheEntries = svc.GetStats()["cachedQueries"].(int)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, log, stats)

	switch {
	case stats.PagesFailed > 0:
		return stats, fmt.Errorf("%w: %d of %d", ErrPagesFailed, stats.PagesFailed, stats.PagesRequested)
	case warmRequests > 0:
		return stats, fmt.Errorf("%w: %d requests", ErrCacheIneffective, warmRequests)
	case feedbackErr != nil:
		return stats, feedbackErr
	}

	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// loadPages reads every data page readers times concurrently.
func loadPages(ctx context.Context, svc *service.Service, limiter *rate.Limiter, readers int, stats *Stats) error {
	var loaded, empty, failed, requested atomic.Int64
	log := logger.Get().Named("probe")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readers * len(service.Pages()))

	for _, page := range service.Pages() {
		page := page
		if page.DataPath == "" {
			continue
		}
		for i := 0; i < readers; i++ {
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
				requested.Add(1)

				view, err := svc.PageData(gctx, page.Path)
				switch {
				case err != nil:
					failed.Add(1)
					log.Warn(gctx, "page failed",
						logger.String("page", page.Name),
						logger.String("path", page.DataPath),
						logger.Error(err),
					)
				case isEmpty(view.Data):
					empty.Add(1)
				default:
					loaded.Add(1)
					log.Debug(gctx, "page loaded",
						logger.String("page", page.Name),
						logger.Int("items", countItems(view.Data)),
					)
				}
				return nil
			})
		}
	}

	err := g.Wait()

	stats.PagesRequested += int(requested.Load())
	stats.PagesLoaded += int(loaded.Load())
	stats.PagesEmpty += int(empty.Load())
	stats.PagesFailed += int(failed.Load())
	return err
}

// submitFeedback posts through the router and inspects the raw envelope.
func submitFeedback(ctx context.Context, svc *service.Service, content string, stats *Stats) error {
	log := logger.Get().Named("probe")

	env, err := svc.Router().Send(ctx, dataaccess.MethodPost, service.FeedbackPath, model.Feedback{Content: content})
	if err != nil {
		log.Error(ctx, "feedback failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrFeedbackFailed, err)
	}
	stats.FeedbackSubmitted = true

	success := gjson.GetBytes(env.Body, "success")
	stats.FeedbackMessage = gjson.GetBytes(env.Body, "message").String()
	stats.FeedbackSimulated = svc.Deployment(ctx).IsStatic() && stats.FeedbackMessage == "operation simulated"

	log.Info(ctx, "feedback acknowledged",
		logger.Int("status", env.Status),
		logger.Bool("success", success.Bool()),
		logger.String("message", stats.FeedbackMessage),
		logger.Bool("simulated", stats.FeedbackSimulated),
	)

	if success.Exists() && !success.Bool() {
		return fmt.Errorf("%w: %s", ErrFeedbackFailed, stats.FeedbackMessage)
	}
	return nil
}

func isEmpty(data any) bool {
	return countItems(data) == 0
}

func countItems(data any) int {
	switch v := data.(type) {
	case []model.Regulation:
		return len(v)
	case []model.GovernanceFramework:
		return len(v)
	case []model.Resource:
		return len(v)
	case nil:
		return 0
	default:
		return 1
	}
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate float64
	if stats.PagesRequested > 0 {
		successRate = float64(stats.PagesLoaded+stats.PagesEmpty) / float64(stats.PagesRequested) * percentageMultiplier
	}

	log.Info(ctx, "final statistics",
		logger.String("mode", stats.Mode),
		logger.String("basePath", stats.BasePath),
		logger.Int("pagesRequested", stats.PagesRequested),
		logger.Int("pagesLoaded", stats.PagesLoaded),
		logger.Int("pagesEmpty", stats.PagesEmpty),
		logger.Int("pagesFailed", stats.PagesFailed),
		logger.Int("networkRequests", stats.NetworkRequests),
		logger.Int("cacheEntries", stats.CacheEntries),
		logger.Bool("feedbackSubmitted", stats.FeedbackSubmitted),
		logger.Bool("feedbackSimulated", stats.FeedbackSimulated),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
	)
}
