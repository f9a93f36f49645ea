// Package metrics declares the Prometheus collectors of the API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API client metrics
var (
	// RequestsTotal counts every HTTP exchange the pipeline performs, retries
	// and redirect hops included.  status is the numeric code or "error".
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_client_requests_total",
			Help: "HTTP requests issued by the LMS client by method and status",
		},
		[]string{"method", "status"},
	)

	// RequestDuration tracks round-trip latency of single exchanges.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lms_client_request_duration_seconds",
			Help:    "LMS client HTTP exchange duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// RefreshTotal counts token refresh attempts (success/failure).
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_client_refresh_total",
			Help: "Access token refresh attempts by result",
		},
		[]string{"result"},
	)

	// RedirectsTotal counts redirect responses that were followed.
	RedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_client_redirects_total",
			Help: "Redirect responses followed by the LMS client",
		},
	)

	// SessionExpiredTotal counts sessions torn down after a failed refresh.
	SessionExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lms_client_session_expired_total",
			Help: "Sessions cleared because the refresh token was rejected",
		},
	)
)
