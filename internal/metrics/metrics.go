// Package metrics exposes build counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the build collectors in their own registry.
type Metrics struct {
	registry   *prometheus.Registry
	builds     *prometheus.CounterVec
	duration   prometheus.Histogram
	words      prometheus.Gauge
	chapters   prometheus.Gauge
	queueDepth prometheus.GaugeFunc
}

// New registers the bookbind collectors. queueDepth may be nil.
func New(queueDepth func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookbind",
			Name:      "builds_total",
			Help:      "Book builds by final status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookbind",
			Name:      "build_duration_seconds",
			Help:      "Wall time of book builds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		words: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookbind",
			Name:      "book_words",
			Help:      "Word count of the last successful build.",
		}),
		chapters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookbind",
			Name:      "book_chapters",
			Help:      "Chapters in the last successful build.",
		}),
	}
	reg.MustRegister(m.builds, m.duration, m.words, m.chapters,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if queueDepth != nil {
		m.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "bookbind",
			Name:      "build_queue_depth",
			Help:      "Build jobs waiting for a worker.",
		}, func() float64 { return float64(queueDepth()) })
		reg.MustRegister(m.queueDepth)
	}
	return m
}

// ObserveBuild records one finished build. words and chapters are only
// recorded for successful builds.
func (m *Metrics) ObserveBuild(status string, d time.Duration, words, chapters int) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
	if status == "completed" {
		m.words.Set(float64(words))
		m.chapters.Set(float64(chapters))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
