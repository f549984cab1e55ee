// Package metrics provides Prometheus instrumentation for generation calls
// and deferred generation jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Job outcomes.
const (
	JobCompleted = "completed"
	JobSkipped   = "skipped"
	JobFailed    = "failed"
)

var (
	// GenerationsTotal counts provider round trips by outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptable_generations_total",
			Help: "Provider generation calls by outcome (ok, empty, error).",
		},
		[]string{"provider", "outcome"},
	)

	// GenerationLatency tracks the HTTP round trip to the provider in seconds.
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptable_generation_latency_seconds",
			Help:    "Provider round trip latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	JobsEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptable_jobs_enqueued_total",
			Help: "Deferred generation jobs handed to the queue.",
		},
	)

	// JobsTotal counts handled deferred jobs by outcome.
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptable_jobs_total",
			Help: "Deferred generation jobs handled by outcome (completed, skipped, failed).",
		},
		[]string{"outcome"},
	)
)
