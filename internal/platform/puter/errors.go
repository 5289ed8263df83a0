package puter

import (
	"fmt"

	"github.com/phrazzld/puterbatch/internal/generation"
)

// AuthError reports a failed sign-in. It unwraps to generation.ErrAuthFailed.
type AuthError struct {
	// StatusCode is zero when the request never got an HTTP response.
	StatusCode int
	Reason     string
	Err        error
}

func (e *AuthError) Error() string {
	msg := "authentication failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{generation.ErrAuthFailed, e.Err}
	}
	return []error{generation.ErrAuthFailed}
}

// StatusError reports a non-2xx response from the driver endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
