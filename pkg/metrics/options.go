package metrics

import (
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithMetricsEnabled turns router request recording on or off.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithSampleInterval sets how often the host samples runtime gauges.
func WithSampleInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.sampleInterval = interval
		}
	}
}

// WithConstLabels attaches labels such as the deployment mode to every metric.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		maps.Copy(m.constLabels, labels)
	}
}

// WithRegistry registers collectors on registry instead of the default one.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
