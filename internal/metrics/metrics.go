// Package metrics defines the Prometheus collectors exported by fairjudge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

var (
	// JudgeRequests counts judge requests by outcome.
	JudgeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairjudge_judge_requests_total",
			Help: "Total number of judge requests",
		},
		[]string{"outcome"},
	)

	// JudgeDuration observes the wall-clock time of the persona fan-out.
	JudgeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fairjudge_judge_duration_seconds",
			Help:    "Duration of the persona fan-out of a judge request",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"backend"},
	)

	// PersonaResults counts per-persona results by outcome.
	PersonaResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairjudge_persona_results_total",
			Help: "Total number of persona results",
		},
		[]string{"persona", "outcome"},
	)

	// ScoreFallbacks counts scores that could not be extracted from the model response.
	ScoreFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairjudge_score_fallbacks_total",
			Help: "Total number of bias scores that fell back to the neutral default",
		},
		[]string{"persona"},
	)

	// BackendSwitches counts backend switch attempts.
	BackendSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fairjudge_backend_switches_total",
			Help: "Total number of backend switch attempts",
		},
		[]string{"backend", "outcome"},
	)

	// ActiveBackend is 1 for the active backend and 0 otherwise.
	ActiveBackend = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fairjudge_active_backend",
			Help: "Currently active backend (1 = active)",
		},
		[]string{"backend"},
	)
)
