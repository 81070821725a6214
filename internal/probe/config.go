// Package probe exercises a running dashboard deployment end to end: it loads
// every page through the data-access router and query cache, optionally
// submits feedback, and reports what happened.
package probe

import (
	"net/url"
	"time"

	"github.com/okian/regmatrix/internal/domain/deploy"
)

// Config holds configuration for a probe run.
type Config struct {
	Origin     *url.URL       // Where logical and snapshot paths resolve
	Deployment deploy.Context // Classification input for every call
	Workers    int            // Concurrent readers per page on the first pass
	RPS        float64        // Request pacing; zero or negative is unlimited
	StaleTime  time.Duration  // Cache stale time; zero never expires
	Feedback   string         // Feedback to submit; empty skips the step
	Verbose    bool           // Enable verbose logging
}

// Stats holds probe statistics.
type Stats struct {
	Mode              string
	BasePath          string
	PagesRequested    int
	PagesLoaded       int
	PagesEmpty        int
	PagesFailed       int
	NetworkRequests   int
	CacheEntries      int
	FeedbackSubmitted bool
	FeedbackSimulated bool
	FeedbackMessage   string
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
