package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry registers all metrics on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors(enabled bool) Option {
	return func(m *Manager) {
		m.runtimeCollectors = enabled
	}
}
