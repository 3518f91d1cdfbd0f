package entities

// Result is the outcome of a user-facing action, shaped for display
type Result struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`

	// Cause is the error behind a failed result, if any
	Cause error `json:"-"`
}

// Succeeded builds a successful result
func Succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

// Failed builds a failed result
func Failed(message string) Result {
	return Result{Success: false, Error: message}
}
