package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	VerificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchit_email_verification_attempts_total",
			Help: "Email verification attempts by transport and outcome",
		},
		[]string{"transport", "success"},
	)

	EmailsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchit_emails_dispatched_total",
			Help: "Outgoing emails by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchit_application_status_transitions_total",
			Help: "Application status transitions",
		},
		[]string{"from", "to"},
	)

	InterviewScheduling = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchit_interview_scheduling_total",
			Help: "Interview scheduling attempts by outcome",
		},
		[]string{"outcome"},
	)
)
