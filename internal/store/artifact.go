package store

import (
	"context"

	"github.com/phrazzld/puterbatch/internal/domain"
)

// ArtifactStore persists one artifact per task id.
type ArtifactStore interface {
	// Exists reports whether an artifact for id has been written.
	Exists(id int) (bool, error)

	// Write stores the artifact for id.
	// Returns ErrArtifactExists if one is already present.
	Write(ctx context.Context, id int, artifact *domain.Artifact) error
}
