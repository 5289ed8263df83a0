package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/puterbatch/internal/domain"
)

// Completer is a mock implementation of generation.Completer
type Completer struct {
	CompleteFn func(
		ctx context.Context,
		session domain.AuthSession,
		task domain.Task,
		params domain.SamplingParams,
	) (*domain.CompletionResult, error)

	mu    sync.Mutex
	calls []domain.Task
}

// Complete implements generation.Completer
func (m *Completer) Complete(
	ctx context.Context,
	session domain.AuthSession,
	task domain.Task,
	params domain.SamplingParams,
) (*domain.CompletionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, task)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, session, task, params)
	}
	return &domain.CompletionResult{
		APILabel:     task.APILabel,
		Prompt:       task.Prompt,
		ResponseText: "ok",
		RawResponse:  []byte(`{"message":{"content":"ok"}}`),
	}, nil
}

// Calls returns the tasks passed to Complete, in call order
func (m *Completer) Calls() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.calls))
	copy(out, m.calls)
	return out
}
