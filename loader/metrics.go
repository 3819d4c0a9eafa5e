package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records document fetch activity.
type Metrics struct {
	fetches   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	redirects prometheus.Counter
	bytes     prometheus.Counter
}

// NewMetrics creates loader metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oaskit",
			Subsystem: "loader",
			Name:      "fetches_total",
			Help:      "Total number of document fetches by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oaskit",
			Subsystem: "loader",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and decoding a document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scheme"}),
		redirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oaskit",
			Subsystem: "loader",
			Name:      "redirects_total",
			Help:      "Total number of HTTP redirects followed.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oaskit",
			Subsystem: "loader",
			Name:      "fetched_bytes_total",
			Help:      "Total number of document bytes read.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.duration, m.redirects, m.bytes)
	}
	return m
}

func (m *Metrics) observeFetch(scheme string, start time.Time, size int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(scheme, outcome).Inc()
	m.duration.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
	m.bytes.Add(float64(size))
}

func (m *Metrics) observeRedirect() {
	if m == nil {
		return
	}
	m.redirects.Inc()
}
