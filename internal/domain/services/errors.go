package services

import (
	"errors"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

const (
	// NetworkErrorMessage is shown when the backend cannot be reached
	NetworkErrorMessage = "Unable to reach the server. Please check your connection."

	// SignInRequiredMessage is shown when an action needs a signed-in user
	SignInRequiredMessage = "Please sign in to continue."

	// SessionExpiredMessage is shown after a failed token refresh signs the user out
	SessionExpiredMessage = "Your session has expired. Please sign in again."

	// ValidationErrorMessage summarizes a rejected form
	ValidationErrorMessage = "Validation error"
)

// ErrValidation matches every ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side form check that failed before any request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage converts an error into text suitable for showing to the user
func UserMessage(err error, fallback string) string {
	var validationErr *ValidationError
	var apiErr *client.APIError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, client.ErrNetwork):
		return NetworkErrorMessage
	case errors.Is(err, client.ErrRefreshFailed):
		return SessionExpiredMessage
	case errors.Is(err, client.ErrAuthRequired):
		return SignInRequiredMessage
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrPlaylistNotFound):
		return "Playlist not found"
	case errors.Is(err, ErrAdminRequired):
		return "Admin access required"
	default:
		return fallback
	}
}

// ResultFromError converts a failed action into a Result.
// Rejected 400 payloads and local validation failures carry per-field errors.
func ResultFromError(err error, fallback string) entities.Result {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		res := entities.Failed(validationErr.Message)
		if validationErr.Field != "" {
			res.FieldErrors = map[string]string{validationErr.Field: validationErr.Message}
		}
		res.Cause = err
		return res
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 400 && len(apiErr.FieldErrors) > 0 {
		res := entities.Failed(ValidationErrorMessage)
		if apiErr.ServerReported {
			res.Error = apiErr.Message
		}
		res.FieldErrors = apiErr.FieldErrors
		res.Cause = err
		return res
	}

	res := entities.Failed(UserMessage(err, fallback))
	res.Cause = err
	return res
}
