package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthRequired is returned when a request requires auth but no token is held
	ErrAuthRequired = errors.New("authentication required but no token found")

	// ErrNetwork wraps transport failures where no response was received
	ErrNetwork = errors.New("network error")

	// ErrRefreshFailed is returned when the refresh exchange fails; tokens have been cleared
	ErrRefreshFailed = errors.New("failed to refresh token")

	// ErrNoRefreshToken is returned when an access token needs refreshing but no refresh token is held
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrInvalidRefreshResponse is returned when the refresh endpoint answers without an access token
	ErrInvalidRefreshResponse = errors.New("invalid refresh response")

	// ErrUnauthorized matches any APIError with status 401
	ErrUnauthorized = errors.New("unauthorized")
)

// messageKeys are the JSON error body fields checked for a human-readable message, in order
var messageKeys = []string{"detail", "message", "error"}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string

	// ServerReported is true when Message came from the response body
	ServerReported bool

	// FieldErrors holds per-field validation messages (e.g. Django 400 payloads)
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// newAPIError builds an APIError from a response status and body.
// Falls back to a generic "Request Error: <status>" message when the body
// has no usable message field.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("Request Error: %d", statusCode),
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	for _, key := range messageKeys {
		if msg, ok := payload[key].(string); ok && msg != "" {
			apiErr.Message = msg
			apiErr.ServerReported = true
			break
		}
	}

	apiErr.FieldErrors = fieldErrors(payload)
	return apiErr
}

// fieldErrors flattens a Django REST framework style error payload
// ({"email": ["Enter a valid email address."]}) into one message per field
func fieldErrors(payload map[string]interface{}) map[string]string {
	out := make(map[string]string)
	for field, value := range payload {
		if isMessageKey(field) {
			continue
		}
		switch v := value.(type) {
		case string:
			out[field] = v
		case []interface{}:
			var parts []string
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				out[field] = strings.Join(parts, " ")
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isMessageKey(field string) bool {
	for _, key := range messageKeys {
		if field == key {
			return true
		}
	}
	return false
}

// SortedFieldNames returns the field error keys in stable order for display
func (e *APIError) SortedFieldNames() []string {
	names := make([]string, 0, len(e.FieldErrors))
	for name := range e.FieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
