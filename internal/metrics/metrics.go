// Package metrics provides Prometheus metrics for reminder generation and the HTTP API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shukatsu-reminders/internal/domain"
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

// Manager owns a registry and the metrics registered on it.
type Manager struct {
	namespace         string
	histogramBuckets  []float64
	registry          *prometheus.Registry
	runtimeCollectors bool

	generatorRuns      *prometheus.CounterVec
	generatorDuration  *prometheus.HistogramVec
	remindersGenerated *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shukatsu",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	if m.runtimeCollectors {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.generatorRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "reminder",
		Name:      "generator_runs_total",
		Help:      "Reminder generator runs by generator and outcome",
	}, []string{"generator", "outcome"})

	m.generatorDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "reminder",
		Name:      "generator_duration_seconds",
		Help:      "Time spent in one reminder generator run",
		Buckets:   m.histogramBuckets,
	}, []string{"generator"})

	m.remindersGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "reminder",
		Name:      "generated_total",
		Help:      "Reminders produced, by generator and kind",
	}, []string{"generator", "kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// ObserveGenerator records one generator run.
func (m *Manager) ObserveGenerator(generator string, elapsed time.Duration, reminders []domain.Reminder, err error) {
	m.generatorDuration.WithLabelValues(generator).Observe(elapsed.Seconds())
	if err != nil {
		m.generatorRuns.WithLabelValues(generator, outcomeFailed).Inc()
		return
	}
	m.generatorRuns.WithLabelValues(generator, outcomeOK).Inc()
	for _, r := range reminders {
		m.remindersGenerated.WithLabelValues(generator, string(r.Kind)).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method, statusCode string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
