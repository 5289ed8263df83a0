package task

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(3)
	assert.Equal(t, Progress{Total: 3}, tr.Progress())
	assert.False(t, tr.Progress().Done())

	p := tr.Record(NewMockTask(2), errors.New("bad"))
	assert.Equal(t, Progress{Completed: 1, Failed: 1, Total: 3}, p)

	tr.Record(NewMockTask(0), nil)
	p = tr.Record(NewMockTask(1), errors.New("worse"))
	assert.Equal(t, Progress{Completed: 3, Succeeded: 1, Failed: 2, Total: 3}, p)
	assert.True(t, p.Done())

	assert.True(t, tr.Seen(0))
	assert.False(t, tr.Seen(9))

	report := tr.Report(time.Second)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, time.Second, report.Elapsed)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, 1, report.Failures[0].ID)
	assert.Equal(t, 2, report.Failures[1].ID)
	assert.Equal(t, "mock", report.Failures[0].Type)
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%4 == 0 {
				err = errors.New("fail")
			}
			tr.Record(NewMockTask(i), err)
		}(i)
	}
	wg.Wait()

	p := tr.Progress()
	assert.Equal(t, 100, p.Completed)
	assert.Equal(t, 25, p.Failed)
	assert.Equal(t, 75, p.Succeeded)
}
