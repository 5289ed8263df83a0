package task

import (
	"context"
	"sync"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID    int
	TaskType  string
	ExecuteFn func(ctx context.Context) error

	mu     sync.Mutex
	status TaskStatus
}

// NewMockTask creates a new MockTask with the given ID that succeeds
func NewMockTask(id int) *MockTask {
	return &MockTask{
		TaskID:    id,
		TaskType:  "mock",
		ExecuteFn: func(ctx context.Context) error { return nil },
		status:    TaskStatusPending,
	}
}

// ID returns the task id
func (t *MockTask) ID() int {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Status returns the current task status
func (t *MockTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Execute runs ExecuteFn and records the outcome
func (t *MockTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.status = TaskStatusProcessing
	t.mu.Unlock()

	err := t.ExecuteFn(ctx)

	t.mu.Lock()
	if err != nil {
		t.status = TaskStatusFailed
	} else {
		t.status = TaskStatusCompleted
	}
	t.mu.Unlock()
	return err
}
