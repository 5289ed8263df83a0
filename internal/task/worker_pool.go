package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/puterbatch/internal/platform/metrics"
	"github.com/phrazzld/puterbatch/internal/redact"
)

var (
	// ErrTaskPanicked wraps the value recovered from a panicking task.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrTaskNotStarted is reported for tasks still queued when a run is canceled.
	ErrTaskNotStarted = errors.New("task not started")
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is passed to every task and canceled by Stop
	ctx    context.Context
	cancel context.CancelFunc

	logger  *slog.Logger
	metrics *metrics.Collector

	// tracker counts terminal tasks; nil when the pool is driven manually
	tracker *Tracker

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)

	// progressHandler is called after every terminal task
	progressHandler func(p Progress)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// Metrics receives task counters; may be nil
	Metrics *metrics.Collector
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 5,
	}
}

// NewWorkerPool creates a new worker pool reading from taskQueue.
// taskQueue may be nil for a pool that is only used through Run.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "worker_pool"),
		metrics:     config.Metrics,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures.
// It must be called before Start or Run.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// SetProgressHandler sets a callback invoked after every terminal task.
// It must be called before Start or Run.
func (p *WorkerPool) SetProgressHandler(handler func(p Progress)) {
	p.progressHandler = handler
}

// WorkerCount returns the number of workers the pool starts.
func (p *WorkerPool) WorkerCount() int {
	return p.workerCount
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Wait blocks until every worker has exited, which happens once the queue
// is closed and drained or the pool is stopped.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Stop cancels the pool context and waits for the workers to exit.
// Running tasks observe the cancellation through their context.
func (p *WorkerPool) Stop() {
	p.logger.Info("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Run executes tasks with the pool's worker count and blocks until every
// task is terminal. Canceling ctx makes running tasks fail fast; tasks that
// never started are reported as failures wrapping ErrTaskNotStarted.
func (p *WorkerPool) Run(ctx context.Context, tasks []Task) *Report {
	start := time.Now()

	queue := NewTaskQueue(len(tasks), p.logger)
	for _, t := range tasks {
		// cannot fail: the queue is sized for every task and still open
		_ = queue.Enqueue(t)
	}
	queue.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := &WorkerPool{
		taskQueue:       queue,
		workerCount:     p.workerCount,
		ctx:             runCtx,
		cancel:          cancel,
		logger:          p.logger,
		metrics:         p.metrics,
		tracker:         NewTracker(len(tasks)),
		errorHandler:    p.errorHandler,
		progressHandler: p.progressHandler,
	}

	run.Start()
	run.Wait()

	for _, t := range tasks {
		if run.tracker.Seen(t.ID()) {
			continue
		}
		err := fmt.Errorf("%w: %w", ErrTaskNotStarted, context.Cause(runCtx))
		run.finish(-1, t, err)
	}

	report := run.tracker.Report(time.Since(start))
	p.logger.Info("run finished",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"elapsed", report.Elapsed.String())
	return report
}

// worker consumes tasks until the queue is closed and drained or the pool
// context is canceled.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				p.logger.Debug("task queue drained, worker exiting", "worker_id", id)
				return
			}
			p.processTask(id, task)
		}
	}
}

func (p *WorkerPool) processTask(workerID int, task Task) {
	logger := p.logger.With("worker_id", workerID, "task_id", task.ID(), "task_type", task.Type())
	logger.Debug("processing task")

	p.metrics.TaskStarted()
	start := time.Now()
	err := p.execute(task)

	if err != nil {
		logger.Error("task execution failed",
			"error", redact.Error(err),
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		logger.Debug("task execution completed", "duration_ms", time.Since(start).Milliseconds())
	}

	p.finish(workerID, task, err)
}

// finish records a terminal task and notifies the handlers.
func (p *WorkerPool) finish(workerID int, task Task, err error) {
	if workerID >= 0 {
		p.metrics.TaskFinished(err)
	}

	if err != nil && p.errorHandler != nil {
		p.errorHandler(task, err)
	}

	if p.tracker == nil {
		return
	}
	progress := p.tracker.Record(task, err)
	if p.progressHandler != nil {
		p.progressHandler(progress)
	}
}

// execute runs the task, converting a panic into an error.
func (p *WorkerPool) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task.Execute(p.ctx)
}
