package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationsIssued counts persisted group invitations.
	InvitationsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_invitations_issued_total",
			Help: "Total number of group invitations persisted",
		},
	)

	// TokensIssued counts guest access tokens minted by reason (bulk|resend).
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_guest_tokens_issued_total",
			Help: "Total number of guest access tokens signed",
		},
		[]string{"reason"},
	)

	// EmailDeliveries records dispatch attempts by kind (invite|resend) and result (success|failure).
	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_email_deliveries_total",
			Help: "Total number of invitation email dispatch attempts",
		},
		[]string{"kind", "result"},
	)

	// AccessChecks counts access link verifications by outcome (granted|missing|invalid|not_found).
	AccessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_access_checks_total",
			Help: "Total number of access link verifications",
		},
		[]string{"outcome"},
	)

	// Confirmations counts successful login confirmations.
	Confirmations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_member_confirmations_total",
			Help: "Total number of member login confirmations",
		},
	)

	// MembersByStatus is refreshed by the maintenance reporter.
	MembersByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wedding_members",
			Help: "Invitation members by status",
		},
		[]string{"status"},
	)

	// MaintenanceRuns counts background job runs by outcome.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// RateLimited counts requests rejected by the public API rate limit, by route.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_rate_limited_total",
			Help: "Total number of requests rejected by the rate limit",
		},
		[]string{"route"},
	)

	// InFlightRequests is the number of requests currently being served.
	InFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wedding_http_in_flight_requests",
			Help: "HTTP requests currently being served",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
