package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdata_questions_total",
			Help: "Total number of natural language questions processed, by conversion source.",
		},
		[]string{"source"},
	)
	conversionFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "talkdata_conversion_fallbacks_total",
			Help: "Total number of NL-to-SQL conversions answered by local templates after a service failure.",
		},
	)
	queryFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdata_query_failures_total",
			Help: "Total number of failed query executions, by error kind.",
		},
		[]string{"kind"},
	)
	queryDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "talkdata_query_duration_ms",
			Help:    "Analytical query execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)
	displayDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talkdata_display_decisions_total",
			Help: "Total number of display-type classifications, by chosen type.",
		},
		[]string{"display_type"},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		conversionFallbacksTotal,
		queryFailuresTotal,
		queryDurationMs,
		displayDecisionsTotal,
	)
}

func ObserveQuestion(source string) {
	questionsTotal.WithLabelValues(source).Inc()
}

func IncrementConversionFallback() {
	conversionFallbacksTotal.Inc()
}

func ObserveQueryFailure(kind string) {
	queryFailuresTotal.WithLabelValues(kind).Inc()
}

func ObserveQueryDuration(elapsed time.Duration) {
	queryDurationMs.Observe(float64(elapsed.Microseconds()) / 1000.0)
}

func ObserveDisplayDecision(displayType string) {
	displayDecisionsTotal.WithLabelValues(displayType).Inc()
}
