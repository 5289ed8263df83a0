package task

import (
	"sort"
	"sync"
	"time"
)

// Progress is a snapshot of a run's counters.
type Progress struct {
	Completed int
	Succeeded int
	Failed    int
	Total     int
}

// Done reports whether every task has reached a terminal state.
func (p Progress) Done() bool {
	return p.Completed >= p.Total
}

// TaskFailure records why a task failed.
type TaskFailure struct {
	ID   int
	Type string
	Err  error
}

// Report summarizes a finished run. Failures are sorted by task id.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []TaskFailure
	Elapsed   time.Duration
}

// Tracker counts terminal tasks. It is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	total     int
	succeeded int
	failed    int
	failures  []TaskFailure
	seen      map[int]struct{}
}

// NewTracker creates a tracker expecting total tasks.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total: total,
		seen:  make(map[int]struct{}, total),
	}
}

// Record marks the task as terminal and returns the updated progress.
func (t *Tracker) Record(task Task, err error) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen[task.ID()] = struct{}{}
	if err != nil {
		t.failed++
		t.failures = append(t.failures, TaskFailure{ID: task.ID(), Type: task.Type(), Err: err})
	} else {
		t.succeeded++
	}

	return t.progressLocked()
}

// Seen reports whether a result was recorded for the task id.
func (t *Tracker) Seen(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[id]
	return ok
}

// Progress returns the current counters.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progressLocked()
}

// Report builds the run summary.
func (t *Tracker) Report(elapsed time.Duration) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	failures := make([]TaskFailure, len(t.failures))
	copy(failures, t.failures)
	sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })

	return &Report{
		Total:     t.total,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Failures:  failures,
		Elapsed:   elapsed,
	}
}

func (t *Tracker) progressLocked() Progress {
	return Progress{
		Completed: t.succeeded + t.failed,
		Succeeded: t.succeeded,
		Failed:    t.failed,
		Total:     t.total,
	}
}
