package query

import (
	"time"

	"github.com/okian/regmatrix/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithStaleTime sets how long an entry is served before the next read fetches
// it again. Zero or negative means entries never go stale.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) {
		if d < 0 {
			d = 0
		}
		c.staleTime = d
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
