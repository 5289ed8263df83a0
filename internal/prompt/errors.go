package prompt

import (
	"errors"
	"fmt"
)

// ErrNoShots is returned when the catalog cannot supply the requested shots.
var ErrNoShots = errors.New("no shots available")

// ConstructionError reports that no prompt can be built for an API label.
// It is expected for some records and never retried.
type ConstructionError struct {
	API      string
	ShotType string
	Err      error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("build prompt for api %q (shot type %q): %v", e.API, e.ShotType, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// IsConstructionError reports whether err is, or wraps, a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
