package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MembershipDBPoolConnections is keyed by state: acquired, idle, total, max.
	MembershipDBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "membership_db_pool_connections",
			Help: "Connections in the membership database pool by state",
		},
		[]string{"state"},
	)

	MembershipDBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "membership_db_query_duration_seconds",
			Help:    "Duration of membership database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)

	MembershipDBQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_db_query_errors_total",
			Help: "Membership database query failures, not counting missing rows",
		},
		[]string{"operation", "table", "error_type"},
	)

	MembershipDBRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "membership_db_retries_total",
			Help: "Database operations re-attempted after a transient error",
		},
	)
)
