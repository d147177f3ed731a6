// Package metrics exposes the Prometheus instruments for the planning API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the instruments the handlers record into.
type Metrics struct {
	PlanRequests   *prometheus.CounterVec
	PlanDuration   prometheus.Histogram
	Fragments      prometheus.Counter
	Notifications  *prometheus.CounterVec
	CacheHits      prometheus.Counter
	DebugObservers prometheus.Gauge
}

// Outcome labels for PlanRequests.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeCached    = "cached"
)

// New registers the instruments on the given registerer. Production passes
// prometheus.DefaultRegisterer; tests pass their own registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PlanRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripcast_plan_requests_total",
			Help: "Plan requests by mode and outcome.",
		}, []string{"mode", "status"}),
		PlanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripcast_plan_duration_seconds",
			Help:    "End-to-end plan streaming duration.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		Fragments: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripcast_generator_fragments_total",
			Help: "Fragments received from the generator.",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripcast_notifications_total",
			Help: "Progress notifications broadcast to observers.",
		}, []string{"level"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripcast_plan_cache_hits_total",
			Help: "Plan requests served from the result cache.",
		}),
		DebugObservers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tripcast_debug_observers",
			Help: "Debug viewers currently connected.",
		}),
	}
}
