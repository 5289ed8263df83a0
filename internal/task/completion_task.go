package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/generation"
	"github.com/phrazzld/puterbatch/internal/store"
)

// Common errors
var (
	ErrNilCompleter = errors.New("completer cannot be nil")
	ErrNilStore     = errors.New("artifact store cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// CompletionOptions are shared by every completion task of a run.
type CompletionOptions struct {
	Session     domain.AuthSession
	Params      domain.SamplingParams
	Generations int
}

// CompletionTask requests completions for one record and persists the
// resulting artifact.
type CompletionTask struct {
	task      domain.Task
	opts      CompletionOptions
	completer generation.Completer
	store     store.ArtifactStore
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewCompletionTask creates a new completion task
func NewCompletionTask(
	task domain.Task,
	opts CompletionOptions,
	completer generation.Completer,
	artifacts store.ArtifactStore,
	logger *slog.Logger,
) (*CompletionTask, error) {
	if completer == nil {
		return nil, ErrNilCompleter
	}
	if artifacts == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task %d: %w", task.ID, err)
	}
	if opts.Generations <= 0 {
		opts.Generations = 1
	}

	return &CompletionTask{
		task:      task,
		opts:      opts,
		completer: completer,
		store:     artifacts,
		logger:    logger.With("task_type", TaskTypeCompletion, "task_id", task.ID, "api", task.APILabel),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the record's line index
func (t *CompletionTask) ID() int {
	return t.task.ID
}

// Type returns the task type identifier
func (t *CompletionTask) Type() string {
	return TaskTypeCompletion
}

// Status returns the current task status
func (t *CompletionTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *CompletionTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute requests the configured number of generations, builds the
// artifact and writes it. Nothing is written unless every generation
// succeeded. An artifact written concurrently by another run counts as done.
func (t *CompletionTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Debug("starting completion task")

	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	results := make([]*domain.CompletionResult, 0, t.opts.Generations)
	for i := 0; i < t.opts.Generations; i++ {
		result, err := t.completer.Complete(ctx, t.opts.Session, t.task, t.opts.Params)
		if err != nil {
			t.setStatus(TaskStatusFailed)
			return fmt.Errorf("completion %d/%d: %w", i+1, t.opts.Generations, err)
		}
		if result == nil {
			t.setStatus(TaskStatusFailed)
			return fmt.Errorf("completion %d/%d: %w", i+1, t.opts.Generations, domain.ErrNoResults)
		}
		if result.ResponseText == "" {
			t.logger.Warn("completion returned no answer text", "generation", i+1)
		}
		results = append(results, result)
	}

	artifact, err := domain.NewArtifact(t.task, results)
	if err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("build artifact: %w", err)
	}

	if err := t.store.Write(ctx, t.task.ID, artifact); err != nil {
		if store.IsExistsError(err) {
			t.logger.Warn("artifact already present, keeping existing file")
			t.setStatus(TaskStatusCompleted)
			return nil
		}
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("write artifact: %w", err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("completion task finished", "generations", len(results))
	return nil
}
