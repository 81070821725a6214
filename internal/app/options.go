package service

import (
	"net/url"
	"time"

	"github.com/okian/regmatrix/internal/adapters/http/dataaccess"
	"github.com/okian/regmatrix/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithHTTPClient sets the transport used by the data-access router.
func WithHTTPClient(client dataaccess.Doer) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithOrigin sets the origin logical and snapshot paths resolve against.
func WithOrigin(origin *url.URL) Option {
	return func(s *Service) {
		s.origin = origin
	}
}

// WithStaleTime sets how long cached page data is served. Zero never expires.
func WithStaleTime(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.staleTime = d
		}
	}
}

// WithUnauthorizedBehavior sets what page reads do with a 401.
func WithUnauthorizedBehavior(b dataaccess.UnauthorizedBehavior) Option {
	return func(s *Service) {
		s.onUnauthorized = b
	}
}
