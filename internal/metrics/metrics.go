// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodloss"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	evaluations   *prometheus.CounterVec
	pointsAwarded prometheus.Counter
	pointsPerEval prometheus.Histogram
	wasteRecords  prometheus.Counter
	wasteGrams    prometheus.Counter
	requests      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "award_evaluations_total",
			Help:      "Weekly point evaluations by outcome.",
		}, []string{"outcome"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points added to user totals.",
		}),
		pointsPerEval: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "points_per_evaluation",
			Help:      "Points added by a single successful evaluation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 25, 50, 100},
		}),
		wasteRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waste_records_total",
			Help:      "Waste records accepted.",
		}),
		wasteGrams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waste_grams_total",
			Help:      "Grams of food waste recorded.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.evaluations,
		m.pointsAwarded,
		m.pointsPerEval,
		m.wasteRecords,
		m.wasteGrams,
		m.requests,
		m.durations,
	)
	return m
}

// ObserveAward records one weekly evaluation.
func (m *Metrics) ObserveAward(outcome string, points int) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
	if outcome == "awarded" || outcome == "no_points" {
		m.pointsPerEval.Observe(float64(points))
	}
}

// ObserveWasteRecorded records one accepted waste record.
func (m *Metrics) ObserveWasteRecorded(grams float64) {
	if m == nil {
		return
	}
	m.wasteRecords.Inc()
	if grams > 0 {
		m.wasteGrams.Add(grams)
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
