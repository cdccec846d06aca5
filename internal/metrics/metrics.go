package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification flow metrics
var (
	// SessionsStarted counts verification flows entered via the start command.
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verification_sessions_started_total",
			Help: "Total verification flows started",
		},
	)

	// SessionsEnded counts terminal session outcomes by reason.
	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_sessions_ended_total",
			Help: "Total verification sessions ended by reason (submitted/failed/cancelled/timeout/fatal_input)",
		},
		[]string{"reason"},
	)

	// StepTimeouts counts step timer expiries by step name.
	StepTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_step_timeouts_total",
			Help: "Total step timer expiries by step",
		},
		[]string{"step"},
	)

	// Submissions counts provider submissions by result.
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_submissions_total",
			Help: "Total provider submissions by status (success/failure)",
		},
		[]string{"status"},
	)

	// MailboxPollCycles counts mailbox poll iterations.
	MailboxPollCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailbox_poll_cycles_total",
			Help: "Total mailbox poll cycles across all applicants",
		},
	)

	// ConfirmationOutcomes counts classified confirmation results.
	ConfirmationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmation_outcomes_total",
			Help: "Total confirmation link outcomes by classification",
		},
		[]string{"outcome"},
	)

	// UpstreamRequestDuration tracks latency of calls to external services.
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream request duration in seconds by service",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service"},
	)
)
