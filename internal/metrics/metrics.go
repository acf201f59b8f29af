// Package metrics exposes per-frame pipeline statistics in Prometheus format
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/LdDl/ball-tracker/track"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns private registry, so several instances can live in one process (e.g. in tests)
type Metrics struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	session  string

	frames     prometheus.Counter
	detections prometheus.Counter
	resets     prometheus.Counter
	procTime   prometheus.Histogram
	radius     prometheus.Histogram
	innovation prometheus.Gauge
}

// New creates and registers collectors. Nil buckets fall back to defaults.
func New(procTimeBuckets, radiusBuckets []float64) *Metrics {
	if procTimeBuckets == nil {
		procTimeBuckets = []float64{0.5, 1, 2, 5, 10, 20, 33, 50, 100, 250}
	}
	if radiusBuckets == nil {
		radiusBuckets = prometheus.LinearBuckets(10, 10, 10)
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balltrack_frames_total",
			Help: "Number of processed frames.",
		}),
		detections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balltrack_detections_total",
			Help: "Number of frames with accepted candidate.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balltrack_resets_total",
			Help: "Number of estimator resets (loops and restarts).",
		}),
		procTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "balltrack_frame_processing_ms",
			Help:    "Histogram of pipeline step times.",
			Buckets: procTimeBuckets,
		}),
		radius: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "balltrack_candidate_radius_px",
			Help:    "Histogram of accepted candidate radii.",
			Buckets: radiusBuckets,
		}),
		innovation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "balltrack_innovation_px",
			Help: "Distance between predicted and detected position on the last frame with detection.",
		}),
	}
	m.registry.MustRegister(m.frames, m.detections, m.resets, m.procTime, m.radius, m.innovation)
	return m
}

// Observe records one committed pipeline step. Change of session identifier is counted as reset.
func (m *Metrics) Observe(result track.Result, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := result.Session.String()
	if m.session != "" && m.session != session {
		m.resets.Inc()
	}
	m.session = session

	m.frames.Inc()
	m.procTime.Observe(float64(elapsed) / float64(time.Millisecond))
	if !result.Found() {
		return
	}
	m.detections.Inc()
	m.radius.Observe(result.Detected.Radius)
	if innovation, ok := result.Innovation(); ok {
		m.innovation.Set(innovation)
	}
}

// Registry returns underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns HTTP handler serving registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
