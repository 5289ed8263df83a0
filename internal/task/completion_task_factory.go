package task

import (
	"log/slog"

	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/generation"
	"github.com/phrazzld/puterbatch/internal/store"
)

// CompletionTaskFactory creates CompletionTask instances sharing one
// session, completer and store.
type CompletionTaskFactory struct {
	opts      CompletionOptions
	completer generation.Completer
	store     store.ArtifactStore
	logger    *slog.Logger
}

// NewCompletionTaskFactory creates a new factory for CompletionTasks
func NewCompletionTaskFactory(
	opts CompletionOptions,
	completer generation.Completer,
	artifacts store.ArtifactStore,
	logger *slog.Logger,
) *CompletionTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionTaskFactory{
		opts:      opts,
		completer: completer,
		store:     artifacts,
		logger:    logger,
	}
}

// CreateTask creates a new CompletionTask for the planned task
func (f *CompletionTaskFactory) CreateTask(t domain.Task) (Task, error) {
	task, err := NewCompletionTask(t, f.opts, f.completer, f.store, f.logger)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTasks creates a CompletionTask for every planned task, in order.
func (f *CompletionTaskFactory) CreateTasks(planned []domain.Task) ([]Task, error) {
	tasks := make([]Task, 0, len(planned))
	for _, t := range planned {
		task, err := f.CreateTask(t)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
