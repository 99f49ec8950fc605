// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters incremented by the pipeline. Constructed
// once against a registry so tests can use isolated registries.
type Metrics struct {
	CallsAnalyzed      prometheus.Counter
	ScoringDuration    prometheus.Histogram
	CoachingRequests   *prometheus.CounterVec
	BreakerRejections  prometheus.Counter
	PersistenceErrors  *prometheus.CounterVec
}

// New registers the metric set on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CallsAnalyzed: factory.NewCounter(prometheus.CounterOpts{
			Name: "callcoach_calls_analyzed_total",
			Help: "Calls run through the analysis pipeline.",
		}),
		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "callcoach_scoring_duration_seconds",
			Help:    "Wall time of parse+score+persist per call.",
			Buckets: prometheus.DefBuckets,
		}),
		CoachingRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcoach_coaching_requests_total",
			Help: "Coaching analysis requests by outcome.",
		}, []string{"outcome"}),
		BreakerRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "callcoach_breaker_rejections_total",
			Help: "Requests rejected by an open circuit breaker.",
		}),
		PersistenceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "callcoach_persistence_errors_total",
			Help: "Persistence failures by table.",
		}, []string{"table"}),
	}
}
