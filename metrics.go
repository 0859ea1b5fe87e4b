package orrery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the engine and collaborator counters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	bodies       prometheus.Gauge
	renderErrors *prometheus.CounterVec
	feedFetches  *prometheus.CounterVec
}

// NewMetrics returns a new collector registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_ticks_total",
			Help: "Total number of engine ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_tick_duration_seconds",
			Help:    "Time spent advancing bodies and rendering one tick",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_bodies",
			Help: "Number of animated bodies",
		}),
		renderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_render_errors_total",
				Help: "Renderer failures, which never halt the tick loop",
			},
			[]string{"renderer"},
		),
		feedFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_feed_fetches_total",
				Help: "Feed fetches by feed and result",
			},
			[]string{"feed", "result"},
		),
	}
	reg.MustRegister(m.ticks, m.tickDuration, m.bodies, m.renderErrors, m.feedFetches)
	return m
}

// RecordTick records one tick and how long it took.
func (m *Metrics) RecordTick(duration time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(duration.Seconds())
}

// SetBodies records the number of animated bodies.
func (m *Metrics) SetBodies(n int) {
	if m == nil {
		return
	}
	m.bodies.Set(float64(n))
}

// RecordRenderError records a failed Render call.
func (m *Metrics) RecordRenderError(renderer string) {
	if m == nil {
		return
	}
	m.renderErrors.WithLabelValues(renderer).Inc()
}

// RecordFeedFetch records the outcome of one feed fetch.
func (m *Metrics) RecordFeedFetch(feed string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.feedFetches.WithLabelValues(feed, result).Inc()
}
