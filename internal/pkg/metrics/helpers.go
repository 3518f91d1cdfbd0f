package metrics

import (
	"strconv"
	"time"
)

// RecordBackendCall records backend API call metrics consistently
// method: HTTP method
// route: normalized route (e.g., "/api/playlists/:id/")
// statusCode: response status (0 when no response was received)
// errorType: classified error ("" if the call succeeded)
func RecordBackendCall(method, route string, statusCode int, duration time.Duration, errorType string) {
	BackendCalls.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	BackendDuration.WithLabelValues(method, route).Observe(float64(duration.Milliseconds()))

	if errorType != "" {
		BackendErrors.WithLabelValues(route, errorType).Inc()
	}
}

// RecordTokenRefresh records the outcome of a refresh exchange
func RecordTokenRefresh(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	TokenRefreshes.WithLabelValues(result).Inc()
	TokenRefreshDuration.Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequest records a request served by the web gateway
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}
