package client

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/pkg/metrics"
)

// metricsTransport wraps an http.RoundTripper to collect metrics on backend calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a transport wrapper that records metrics for every
// backend call. Install it on the http.Client handed to NewClient.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeRoute(req.URL.Path)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	errorType := ""
	if err != nil || statusCode >= 400 {
		errorType = classifyError(statusCode, err)
	}

	metrics.RecordBackendCall(req.Method, route, statusCode, duration, errorType)
	return resp, err
}

var idSegment = regexp.MustCompile(`^\d+$`)

// normalizeRoute replaces numeric path segments with :id to keep label cardinality low
func normalizeRoute(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if idSegment.MatchString(seg) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// classifyError categorizes backend errors for metrics
func classifyError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "TLS"), strings.Contains(errStr, "tls"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}
