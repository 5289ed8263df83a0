package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/store"
)

// ArtifactStore is an in-memory store.ArtifactStore. WriteFn and ExistsFn
// override the default behavior when set.
type ArtifactStore struct {
	ExistsFn func(id int) (bool, error)
	WriteFn  func(ctx context.Context, id int, artifact *domain.Artifact) error

	mu        sync.Mutex
	artifacts map[int]*domain.Artifact
}

// NewArtifactStore creates an empty store, optionally pre-populated with ids
func NewArtifactStore(existing ...int) *ArtifactStore {
	s := &ArtifactStore{artifacts: make(map[int]*domain.Artifact)}
	for _, id := range existing {
		s.artifacts[id] = &domain.Artifact{}
	}
	return s
}

// Exists implements store.ArtifactStore
func (s *ArtifactStore) Exists(id int) (bool, error) {
	if s.ExistsFn != nil {
		return s.ExistsFn(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.artifacts[id]
	return ok, nil
}

// Write implements store.ArtifactStore
func (s *ArtifactStore) Write(ctx context.Context, id int, artifact *domain.Artifact) error {
	if s.WriteFn != nil {
		return s.WriteFn(ctx, id, artifact)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts == nil {
		s.artifacts = make(map[int]*domain.Artifact)
	}
	if _, ok := s.artifacts[id]; ok {
		return fmt.Errorf("%w: %d", store.ErrArtifactExists, id)
	}
	s.artifacts[id] = artifact
	return nil
}

// Get returns the artifact written for id
func (s *ArtifactStore) Get(id int) (*domain.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[id]
	return a, ok
}

// Len returns the number of stored artifacts
func (s *ArtifactStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.artifacts)
}
