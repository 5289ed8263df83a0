package service

import (
	"errors"
	"fmt"
)

// Stages of a batch run, used in BatchError.
const (
	StagePrepare      = "prepare"
	StageAuthenticate = "authenticate"
	StagePlan         = "plan"
	StageDispatch     = "dispatch"
)

// ErrMissingDependency is returned by NewBatchService for a nil collaborator.
var ErrMissingDependency = errors.New("missing dependency")

// BatchError reports the run stage that failed fatally.
type BatchError struct {
	// Stage is the run stage that failed (e.g., "authenticate", "plan")
	Stage string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for BatchError.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// newBatchError wraps err with the stage, returning nil for a nil err.
func newBatchError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &BatchError{Stage: stage, Err: err}
}
