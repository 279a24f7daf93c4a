// Package metrics exposes Prometheus instrumentation for the sampling
// engine. Collectors register on the default registry; serving them is
// the deployment's concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compilation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCacheHit = "cache_hit"
)

var (
	// CompilationsTotal counts strategy compilations by outcome.
	CompilationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semwafer",
		Subsystem: "compiler",
		Name:      "compilations_total",
		Help:      "Strategy compilations by outcome (ok, error, cache_hit).",
	}, []string{"outcome"})

	// ExecutionsTotal counts compiled-strategy executions.
	ExecutionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "semwafer",
		Subsystem: "executor",
		Name:      "executions_total",
		Help:      "Compiled strategy executions.",
	})

	// SelectedPoints observes how many dies each execution selected.
	SelectedPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "semwafer",
		Subsystem: "executor",
		Name:      "selected_points",
		Help:      "Sampling points selected per execution.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// ValidationsTotal counts schematic validations by final status.
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semwafer",
		Subsystem: "validator",
		Name:      "validations_total",
		Help:      "Schematic validations by final status.",
	}, []string{"status"})

	// AlignmentScore observes the alignment score of each validation.
	AlignmentScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "semwafer",
		Subsystem: "validator",
		Name:      "alignment_score",
		Help:      "Alignment score distribution across validations.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})
)
