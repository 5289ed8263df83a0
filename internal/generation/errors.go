package generation

import "errors"

// Common errors returned by completion adapters
var (
	// ErrAuthFailed is returned when the service refuses the credentials or
	// does not hand back a token. It is fatal to a run.
	ErrAuthFailed = errors.New("authentication with completion service failed")

	// ErrInvalidResponse is returned when a response body is not well-formed JSON
	ErrInvalidResponse = errors.New("invalid response from completion service")

	// ErrTransientFailure is returned when a request still fails after every retry
	ErrTransientFailure = errors.New("completion request failed after retries")

	// ErrInvalidConfig is returned when the adapter configuration is invalid
	ErrInvalidConfig = errors.New("invalid completion client configuration")
)
