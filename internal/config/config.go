// Package config defines the process configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/okian/regmatrix/internal/domain/deploy"
)

const defaultMetricsSampleIntervalMS = 10000

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the snapshot host listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Origin is the scheme and host that logical and static paths resolve
	// against, e.g. "http://localhost:9080".
	Origin string `koanf:"origin"`

	// Production is the build mode flag. It defaults to the link-time mode.
	Production bool `koanf:"production"`

	// Hostname is the host the dashboard believes it is served from. When
	// empty, the host of Origin is used.
	Hostname string `koanf:"hostname"`

	// StaticHostSuffix is the domain of the static file host.
	StaticHostSuffix string `koanf:"static_host_suffix"`

	// BasePath is the sub-path the static host serves the site under.
	BasePath string `koanf:"base_path"`

	// StaleTimeMS bounds how long cached reads are served. Zero never expires.
	StaleTimeMS int `koanf:"stale_time_ms"`

	// MetricsEnabled turns router request metrics on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsSampleIntervalMS is how often the host samples runtime gauges.
	MetricsSampleIntervalMS int `koanf:"metrics_sample_interval_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		Origin:           "http://localhost:9080",
		Production:       deploy.IsProductionBuild(),
		StaticHostSuffix: deploy.DefaultStaticHostSuffix,
		BasePath:         deploy.DefaultBasePath,

		MetricsEnabled:          true,
		MetricsSampleIntervalMS: defaultMetricsSampleIntervalMS,
	}
}

// Validate checks field constraints. Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.OriginURL(); err != nil {
		return err
	}
	if c.BasePath != "" && (!strings.HasPrefix(c.BasePath, "/") || strings.HasSuffix(c.BasePath, "/")) {
		return fmt.Errorf("%w: %q must start with / and not end with /", ErrInvalidBasePath, c.BasePath)
	}
	if c.StaleTimeMS < 0 {
		return fmt.Errorf("%w: stale_time_ms must not be negative", ErrInvalidConfig)
	}
	if c.MetricsSampleIntervalMS <= 0 {
		return fmt.Errorf("%w: metrics_sample_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// OriginURL parses Origin. Only absolute http and https URLs are accepted.
func (c *Config) OriginURL() (*url.URL, error) {
	u, err := url.Parse(c.Origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidOrigin, c.Origin)
	}
	return u, nil
}

// StaleTime returns StaleTimeMS as a duration.
func (c *Config) StaleTime() time.Duration {
	return time.Duration(c.StaleTimeMS) * time.Millisecond
}

// MetricsSampleInterval returns MetricsSampleIntervalMS as a duration.
func (c *Config) MetricsSampleInterval() time.Duration {
	return time.Duration(c.MetricsSampleIntervalMS) * time.Millisecond
}

// Deployment builds the deployment context the router classifies calls by.
func (c *Config) Deployment() deploy.Context {
	host := c.Hostname
	if host == "" {
		if u, err := url.Parse(c.Origin); err == nil {
			host = u.Host
		}
	}
	return deploy.Context{
		Production:       c.Production,
		Hostname:         host,
		StaticHostSuffix: c.StaticHostSuffix,
		BasePath:         c.BasePath,
	}
}
