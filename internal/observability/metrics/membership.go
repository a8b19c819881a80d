package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MembershipRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_requests_total",
			Help: "Total number of membership requests",
		},
		[]string{"method", "path"},
	)

	MembershipRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "membership_requests_in_flight",
			Help: "Number of membership requests currently being processed",
		},
	)

	MembershipRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "membership_request_duration_seconds",
			Help:    "Duration of membership requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	MembershipRegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_registrations_total",
			Help: "Total number of successful registrations",
		},
	)

	MembershipLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	MembershipTokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_tokens_issued_total",
			Help: "Total number of bearer tokens issued",
		},
	)

	MembershipTokenValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_token_validations_total",
			Help: "Total number of bearer token validations by result",
		},
		[]string{"result"},
	)

	MembershipPasswordDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "membership_password_duration_seconds",
			Help:    "Time spent in bcrypt by operation (hash, verify)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)
