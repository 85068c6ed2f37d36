// Package observability defines the Prometheus metrics the API exports.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records dispatcher activity. A nil *Metrics is valid and records
// nothing, so tests can leave it out.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the dispatcher metrics and registers them with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactivities",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Dispatched queries and commands by request kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reactivities",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent handling a dispatched request, including its storage round trips.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// ObserveDispatch counts one dispatch. outcome is "ok" or a domain error code.
func (m *Metrics) ObserveDispatch(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
