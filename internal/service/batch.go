package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/puterbatch/internal/domain"
	"github.com/phrazzld/puterbatch/internal/generation"
	"github.com/phrazzld/puterbatch/internal/planner"
	"github.com/phrazzld/puterbatch/internal/platform/metrics"
	"github.com/phrazzld/puterbatch/internal/redact"
	"github.com/phrazzld/puterbatch/internal/store"
	"github.com/phrazzld/puterbatch/internal/task"
)

// Planner lists the tasks still to run for a question file.
type Planner interface {
	PlanFile(ctx context.Context, path string) ([]domain.Task, planner.PlanStats, error)
}

// Dispatcher runs tasks to completion.
type Dispatcher interface {
	Run(ctx context.Context, tasks []task.Task) *task.Report
}

// sessionExpiryWarning is how close to expiry a fresh token triggers a warning.
const sessionExpiryWarning = time.Hour

// dirEnsurer is implemented by stores that need their location created up front.
type dirEnsurer interface {
	EnsureDir() error
}

// Options describes one run.
type Options struct {
	Username     string
	Password     string
	QuestionPath string
	Params       domain.SamplingParams
	Generations  int
}

// Dependencies are the collaborators of a BatchService. Metrics may be nil.
type Dependencies struct {
	Authenticator generation.Authenticator
	Completer     generation.Completer
	Planner       Planner
	Store         store.ArtifactStore
	Dispatcher    Dispatcher
	Metrics       *metrics.Collector
}

// Summary is the outcome of a run that got as far as dispatching.
type Summary struct {
	RunID  string
	Plan   planner.PlanStats
	Report *task.Report
}

// BatchService runs one batch over a question file.
type BatchService struct {
	deps   Dependencies
	opts   Options
	logger *slog.Logger
}

// NewBatchService creates a BatchService.
// It returns an error if any of the required dependencies are nil.
func NewBatchService(deps Dependencies, opts Options, logger *slog.Logger) (*BatchService, error) {
	switch {
	case deps.Authenticator == nil:
		return nil, fmt.Errorf("%w: authenticator", ErrMissingDependency)
	case deps.Completer == nil:
		return nil, fmt.Errorf("%w: completer", ErrMissingDependency)
	case deps.Planner == nil:
		return nil, fmt.Errorf("%w: planner", ErrMissingDependency)
	case deps.Store == nil:
		return nil, fmt.Errorf("%w: artifact store", ErrMissingDependency)
	case deps.Dispatcher == nil:
		return nil, fmt.Errorf("%w: dispatcher", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchService{
		deps:   deps,
		opts:   opts,
		logger: logger.With("component", "batch_service"),
	}, nil
}

// Run authenticates, plans and dispatches. Authentication and planning
// failures are fatal and returned as *BatchError; per-task failures are
// only reported in the summary.
func (s *BatchService) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := s.logger.With("run_id", summary.RunID)

	if ensurer, ok := s.deps.Store.(dirEnsurer); ok {
		if err := ensurer.EnsureDir(); err != nil {
			return nil, newBatchError(StagePrepare, err)
		}
	}

	redact.RegisterSecret(s.opts.Password)

	logger.Info("authenticating", "username", s.opts.Username)
	session, err := s.deps.Authenticator.Authenticate(ctx, s.opts.Username, s.opts.Password)
	if err != nil {
		return nil, newBatchError(StageAuthenticate, err)
	}
	redact.RegisterSecret(session.Token)
	logger.Info("authenticated", "expires_at", session.ExpiresAt)
	if session.ExpiresWithin(time.Now(), sessionExpiryWarning) {
		logger.Warn("session token expires soon and is never refreshed", "expires_at", session.ExpiresAt)
	}

	planned, stats, err := s.deps.Planner.PlanFile(ctx, s.opts.QuestionPath)
	if err != nil {
		return nil, newBatchError(StagePlan, err)
	}
	summary.Plan = stats
	s.deps.Metrics.SetPlan(stats.Planned, stats.AlreadyDone, stats.Skipped)

	factory := task.NewCompletionTaskFactory(task.CompletionOptions{
		Session:     session,
		Params:      s.opts.Params,
		Generations: s.opts.Generations,
	}, s.deps.Completer, s.deps.Store, logger)

	tasks, err := factory.CreateTasks(planned)
	if err != nil {
		return nil, newBatchError(StageDispatch, err)
	}

	logger.Info("dispatching tasks", "count", len(tasks))
	summary.Report = s.deps.Dispatcher.Run(ctx, tasks)

	return summary, nil
}
