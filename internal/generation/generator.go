package generation

import (
	"context"

	"github.com/phrazzld/puterbatch/internal/domain"
)

// Authenticator exchanges credentials for a bearer session.
type Authenticator interface {
	// Authenticate performs a single sign-in call. It is not retried.
	Authenticate(ctx context.Context, username, password string) (domain.AuthSession, error)
}

// Completer sends a task's prompt to the completion service.
// Implementations own their retry policy; an error returned from Complete is
// terminal for the task.
type Completer interface {
	Complete(
		ctx context.Context,
		session domain.AuthSession,
		task domain.Task,
		params domain.SamplingParams,
	) (*domain.CompletionResult, error)
}
