// Package telemetry records search engine calls and data-quality anomalies
// as Prometheus metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transactions"

// Engine call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Recorder holds the service's domain metrics. A nil *Recorder records
// nothing.
type Recorder struct {
	engineRequests  *prometheus.CounterVec
	engineDuration  *prometheus.HistogramVec
	skippedHits     prometheus.Counter
	defaultedValues prometheus.Counter
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		engineRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_requests_total",
			Help:      "Search engine requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		engineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request latency, including response decoding.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		skippedHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_hits_total",
			Help:      "Search hits left out of results because they failed validation.",
		}),
		defaultedValues: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defaulted_bucket_values_total",
			Help:      "Daily bucket dates or sums replaced by a default while mapping.",
		}),
	}
}

// EngineRequest records one engine call.
func (r *Recorder) EngineRequest(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.engineRequests.WithLabelValues(operation, outcome).Inc()
	r.engineDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SkippedHits counts n hits dropped from a search page.
func (r *Recorder) SkippedHits(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.skippedHits.Add(float64(n))
}

// DefaultedValues counts n daily bucket values replaced while mapping.
func (r *Recorder) DefaultedValues(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.defaultedValues.Add(float64(n))
}
