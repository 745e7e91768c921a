// Package metrics provides Prometheus metrics for the insights engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	BundlesIndexed       prometheus.Counter
	EntriesSkipped       prometheus.Counter
	SummariesBuilt       prometheus.Counter
	SummariesFailed      prometheus.Counter
	AnalysisDuration     *prometheus.HistogramVec
	SamplesIngested      prometheus.Counter
	SamplesDropped       prometheus.Counter
	KafkaBatchesConsumed prometheus.Counter
	DeadLetterProduced   prometheus.Counter
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		BundlesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emr_bundles_indexed_total",
			Help: "Total FHIR bundles parsed and indexed",
		}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emr_entries_skipped_total",
			Help: "Total bundle entries skipped as undecodable",
		}),
		SummariesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "summaries_built_total",
			Help: "Total patient and biometric summaries built",
		}),
		SummariesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "summaries_failed_total",
			Help: "Total summary requests that failed",
		}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Summary analysis duration by kind",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
		SamplesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wearable_samples_ingested_total",
			Help: "Total wearable samples persisted",
		}),
		SamplesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wearable_samples_dropped_total",
			Help: "Total wearable samples dropped as invalid",
		}),
		KafkaBatchesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_batches_consumed_total",
			Help: "Total sample batches consumed from Kafka",
		}),
		DeadLetterProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dead_letter_produced_total",
			Help: "Total batches routed to the dead letter topic",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.BundlesIndexed,
		m.EntriesSkipped,
		m.SummariesBuilt,
		m.SummariesFailed,
		m.AnalysisDuration,
		m.SamplesIngested,
		m.SamplesDropped,
		m.KafkaBatchesConsumed,
		m.DeadLetterProduced,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
