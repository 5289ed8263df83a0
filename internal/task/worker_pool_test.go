package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/puterbatch/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockTasks(n int, fn func(id int) func(ctx context.Context) error) []Task {
	tasks := make([]Task, n)
	for i := 0; i < n; i++ {
		m := NewMockTask(i)
		if fn != nil {
			m.ExecuteFn = fn(i)
		}
		tasks[i] = m
	}
	return tasks
}

func TestNewWorkerPool(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 5}, logger)
	assert.Equal(t, 5, pool.WorkerCount())
	assert.Equal(t, queue, pool.taskQueue)
	assert.Nil(t, pool.errorHandler)
	assert.Nil(t, pool.progressHandler)

	for _, count := range []int{0, -5} {
		pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: count}, logger)
		assert.Equal(t, 1, pool.WorkerCount(), "worker count %d", count)
	}

	assert.Equal(t, 5, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_StartWaitDrainsClosedQueue(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(10, logger)

	var executed atomic.Int32
	for _, task := range mockTasks(10, func(int) func(context.Context) error {
		return func(context.Context) error {
			executed.Add(1)
			return nil
		}
	}) {
		require.NoError(t, queue.Enqueue(task))
	}
	queue.Close()

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, logger)
	pool.Start()
	pool.Wait()

	assert.Equal(t, int32(10), executed.Load())
}

func TestWorkerPool_StopCancelsRunningTask(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	started := make(chan struct{})
	task := NewMockTask(0)
	task.ExecuteFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	require.NoError(t, queue.Enqueue(task))

	var handled atomic.Bool
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, logger)
	pool.SetErrorHandler(func(task Task, err error) {
		handled.Store(errors.Is(err, context.Canceled))
	})
	pool.Start()

	<-started
	pool.Stop()

	assert.True(t, handled.Load())
	assert.Equal(t, TaskStatusFailed, task.Status())
}

func TestWorkerPool_Run(t *testing.T) {
	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 4}, setupTestLogger())

	report := pool.Run(context.Background(), mockTasks(20, nil))

	assert.Equal(t, 20, report.Total)
	assert.Equal(t, 20, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Failures)
	assert.Positive(t, report.Elapsed)
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())

	report := pool.Run(context.Background(), nil)

	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Succeeded)
	assert.Empty(t, report.Failures)
}

func TestWorkerPool_RunIsolatesFailuresAndPanics(t *testing.T) {
	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())

	var handlerMu sync.Mutex
	var handled []int
	pool.SetErrorHandler(func(task Task, err error) {
		handlerMu.Lock()
		handled = append(handled, task.ID())
		handlerMu.Unlock()
	})

	tasks := mockTasks(9, func(id int) func(context.Context) error {
		switch id % 3 {
		case 1:
			return func(context.Context) error { return fmt.Errorf("boom %d", id) }
		case 2:
			return func(context.Context) error { panic(fmt.Sprintf("kaboom %d", id)) }
		default:
			return func(context.Context) error { return nil }
		}
	})

	report := pool.Run(context.Background(), tasks)

	assert.Equal(t, 9, report.Total)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 6, report.Failed)
	require.Len(t, report.Failures, 6)

	var ids []int
	for _, f := range report.Failures {
		ids = append(ids, f.ID)
		if f.ID%3 == 2 {
			assert.ErrorIs(t, f.Err, ErrTaskPanicked)
			assert.Contains(t, f.Err.Error(), "panic")
		} else {
			assert.Contains(t, f.Err.Error(), "boom")
		}
	}
	assert.Equal(t, []int{1, 2, 4, 5, 7, 8}, ids, "failures are sorted by id")
	assert.ElementsMatch(t, ids, handled)
}

func TestWorkerPool_RunBoundedConcurrency(t *testing.T) {
	const workers = 3

	var current, peak atomic.Int32
	tasks := mockTasks(15, func(int) func(context.Context) error {
		return func(context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil
		}
	})

	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: workers}, setupTestLogger())
	report := pool.Run(context.Background(), tasks)

	assert.Equal(t, 15, report.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestWorkerPool_RunReportsProgress(t *testing.T) {
	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 2}, setupTestLogger())

	var mu sync.Mutex
	var snapshots []Progress
	pool.SetProgressHandler(func(p Progress) {
		mu.Lock()
		snapshots = append(snapshots, p)
		mu.Unlock()
	})

	tasks := mockTasks(6, func(id int) func(context.Context) error {
		if id == 3 {
			return func(context.Context) error { return errors.New("nope") }
		}
		return func(context.Context) error { return nil }
	})

	pool.Run(context.Background(), tasks)

	require.Len(t, snapshots, 6)
	completed := make([]int, 0, len(snapshots))
	for _, s := range snapshots {
		completed = append(completed, s.Completed)
		assert.Equal(t, 6, s.Total)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, completed)

	final := Progress{}
	for _, s := range snapshots {
		if s.Completed == 6 {
			final = s
		}
	}
	assert.True(t, final.Done())
	assert.Equal(t, 5, final.Succeeded)
	assert.Equal(t, 1, final.Failed)
}

func TestWorkerPool_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tasks := mockTasks(10, func(id int) func(context.Context) error {
		return func(ctx context.Context) error {
			if id == 0 {
				cancel()
			}
			return ctx.Err()
		}
	})

	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	report := pool.Run(ctx, tasks)

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 10, report.Failed, "every task is terminal after cancellation")
	for _, f := range report.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}

func TestWorkerPool_RunRecordsMetrics(t *testing.T) {
	collector := metrics.NewCollector("test")
	pool := NewWorkerPool(nil, WorkerPoolConfig{WorkerCount: 2, Metrics: collector}, setupTestLogger())

	tasks := mockTasks(4, func(id int) func(context.Context) error {
		if id == 0 {
			return func(context.Context) error { return errors.New("fail") }
		}
		return func(context.Context) error { return nil }
	})
	pool.Run(context.Background(), tasks)

	expected := `
# HELP test_tasks_total Tasks that reached a terminal state
# TYPE test_tasks_total counter
test_tasks_total{outcome="failure"} 1
test_tasks_total{outcome="success"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "test_tasks_total"))
}
