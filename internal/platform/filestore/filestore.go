package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/store"
)

// FileStore writes artifacts as JSON files under a result directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// Compile-time check
var _ store.ArtifactStore = (*FileStore)(nil)

// New creates a FileStore rooted at dir. The directory is created lazily.
func New(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("result directory cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileStore{
		dir:    dir,
		logger: logger.With("component", "filestore"),
	}, nil
}

// Dir returns the result directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the artifact path for id.
func (s *FileStore) Path(id int) string {
	return filepath.Join(s.dir, strconv.Itoa(id)+".json")
}

// EnsureDir creates the result directory if it does not exist.
func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create result directory %s: %w", s.dir, err)
	}
	return nil
}

// Exists reports whether <dir>/<id>.json is present.
func (s *FileStore) Exists(id int) (bool, error) {
	if id < 0 {
		return false, domain.ErrNegativeID
	}

	_, err := os.Stat(s.Path(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat artifact %d: %w", id, err)
	}
}

// Write stores the artifact for id. The JSON is written to a temporary file
// in the same directory, synced and then hard-linked into place; the link
// fails if <id>.json already exists, so a published file is always complete
// and never replaced.
func (s *FileStore) Write(ctx context.Context, id int, artifact *domain.Artifact) error {
	if id < 0 {
		return domain.ErrNegativeID
	}
	if artifact == nil {
		return fmt.Errorf("%w: nil artifact for task %d", store.ErrInvalidArtifact, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("%w: marshal task %d: %v", store.ErrInvalidArtifact, id, err)
	}

	if err := s.EnsureDir(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%d-*.tmp", id))
	if err != nil {
		return fmt.Errorf("create temp file for task %d: %w", id, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove temp file", "path", tmpName, "error", rmErr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file for task %d: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file for task %d: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for task %d: %w", id, err)
	}

	target := s.Path(id)
	if err := os.Link(tmpName, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", store.ErrArtifactExists, target)
		}
		return fmt.Errorf("publish artifact %d: %w", id, err)
	}

	s.logger.Debug("artifact written", "task_id", id, "path", target, "bytes", len(data))
	return nil
}
