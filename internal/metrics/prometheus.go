// Package metrics provides Prometheus instrumentation for the render pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the ThermalBoard collectors. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	frames           prometheus.Counter
	recomposites     prometheus.Counter
	cacheHits        prometheus.Counter
	zonesCommitted   prometheus.Counter
	strokesDiscarded prometheus.Counter
	exports          *prometheus.CounterVec

	zones  prometheus.Gauge
	points prometheus.Gauge

	recompositeSeconds prometheus.Histogram
}

// NewManager builds a manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "thermalboard",
		subsystem:        "render",
		histogramBuckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.frames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_total",
		Help:      "Frames presented to the display.",
	})
	m.recomposites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomposites_total",
		Help:      "Full rebuilds of the background cache.",
	})
	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Frames served from the background cache.",
	})
	m.zonesCommitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "zones_committed_total",
		Help:      "Strokes committed as zones.",
	})
	m.strokesDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "strokes_discarded_total",
		Help:      "Strokes dropped for having too few points.",
	})
	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Completed exports by format.",
	}, []string{"format"})
	m.zones = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "zones",
		Help:      "Zones currently in the store.",
	})
	m.points = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points",
		Help:      "Points across all zones in the store.",
	})
	m.recompositeSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomposite_seconds",
		Help:      "Time spent rebuilding the background cache.",
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) RecordFrame() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *Manager) RecordCacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

// RecordRecomposite counts one cache rebuild that took d.
func (m *Manager) RecordRecomposite(d time.Duration) {
	if m != nil {
		m.recomposites.Inc()
		m.recompositeSeconds.Observe(d.Seconds())
	}
}

func (m *Manager) RecordZoneCommitted() {
	if m != nil {
		m.zonesCommitted.Inc()
	}
}

func (m *Manager) RecordStrokeDiscarded() {
	if m != nil {
		m.strokesDiscarded.Inc()
	}
}

func (m *Manager) RecordExport(format string) {
	if m != nil {
		m.exports.WithLabelValues(format).Inc()
	}
}

// UpdateStoreSize sets the zone and point gauges.
func (m *Manager) UpdateStoreSize(zones, points int) {
	if m != nil {
		m.zones.Set(float64(zones))
		m.points.Set(float64(points))
	}
}

// Registry exposes the underlying registry for tests and scraping.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
