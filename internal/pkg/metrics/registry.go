package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend API Metrics
var (
	// BackendCalls tracks calls made to the recommendation backend
	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_backend_calls_total",
			Help: "Total backend API calls by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status"},
	)

	// BackendDuration tracks backend API latency
	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "pixelplaylist_backend_call_duration_ms",
			Help:                            "Backend API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// BackendErrors tracks failed backend calls
	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_backend_errors_total",
			Help: "Total backend API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)
)

// Token lifecycle metrics
var (
	// TokenRefreshes tracks refresh exchanges by result (success, failure)
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_token_refreshes_total",
			Help: "Total access token refresh exchanges by result",
		},
		[]string{"result"},
	)

	// TokenRefreshDuration tracks refresh exchange latency
	TokenRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "pixelplaylist_token_refresh_duration_ms",
			Help:                            "Token refresh exchange duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)

	// TokenRefreshShared counts callers that waited on another caller's in-flight refresh
	TokenRefreshShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelplaylist_token_refresh_shared_total",
			Help: "Total EnsureValidToken callers served by an already in-flight refresh",
		},
	)

	// TokenClears tracks token wipes by reason (sign_out, refresh_failed, unauthorized)
	TokenClears = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_token_clears_total",
			Help: "Total token clears by reason",
		},
		[]string{"reason"},
	)
)

// Web gateway metrics
var (
	// HTTPRequests tracks total HTTP requests served by the web gateway
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "pixelplaylist_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)

	// RouteGuardRedirects tracks redirects issued by the route guard
	RouteGuardRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelplaylist_route_guard_redirects_total",
			Help: "Total route guard redirects by reason",
		},
		[]string{"reason"},
	)
)
