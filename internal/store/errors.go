package store

import (
	"errors"
)

var (
	// ErrArtifactExists is returned by Write when an artifact for the id is
	// already present. Existing artifacts are never overwritten.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrInvalidArtifact is returned when an artifact cannot be stored as given.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// IsExistsError checks if the error reports an artifact that was already written.
func IsExistsError(err error) bool {
	return errors.Is(err, ErrArtifactExists)
}
