// Package metrics declares the Prometheus collectors for the answer pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeParse = "parse_error"
)

var (
	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemeqa_completions_total",
			Help: "Completion service calls by provider, pipeline stage and outcome",
		},
		[]string{"provider", "stage", "outcome"},
	)

	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemeqa_completion_duration_seconds",
			Help:    "Latency of completion service calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"stage"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schemeqa_pipeline_duration_seconds",
			Help:    "End-to-end duration of answering one question",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
		[]string{"outcome"},
	)

	MatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schemeqa_matches_total",
			Help: "Schemes proposed by the classifier",
		},
	)

	UnresolvedSchemesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "schemeqa_unresolved_schemes_total",
			Help: "Proposed schemes missing from the catalog and dropped",
		},
	)

	PagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schemeqa_pages_fetched_total",
			Help: "Web pages fetched for the web answer path, by source",
		},
		[]string{"source"}, // network, cache, blocked, error
	)
)
