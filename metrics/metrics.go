// Package metrics exposes Prometheus instrumentation for evaluations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/isdmx/codescore/sandbox"
	"github.com/isdmx/codescore/scoring"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codescore_evaluations_total",
			Help: "Total number of evaluated submissions by execution status",
		},
		[]string{"status"},
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codescore_execution_duration_seconds",
			Help:    "Wall-clock time of sandboxed executions",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"status"},
	)

	InflightExecutions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codescore_inflight_executions",
			Help: "Number of sandboxed executions currently running",
		},
	)

	CorrectnessScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codescore_correctness_score",
			Help:    "Distribution of correctness scores",
			Buckets: []float64{0, 25, 50, 75, 100},
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codescore_store_errors_total",
			Help: "Total number of failed evaluation store operations",
		},
		[]string{"operation"},
	)
)

// ObserveEvaluation records one finished evaluation
func ObserveEvaluation(result sandbox.ExecutionResult, report scoring.Report) {
	status := string(result.Status)
	EvaluationsTotal.WithLabelValues(status).Inc()
	ExecutionDuration.WithLabelValues(status).Observe(result.Duration.Seconds())
	CorrectnessScore.Observe(float64(report.Score))
}
