package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

func TestDeferredTaskRuns(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())
	defer d.Stop()

	ran := make(chan string, 1)
	d.Schedule("u1", 10*time.Millisecond, func(ctx context.Context) { ran <- "u1" })
	assert.Equal(t, 1, d.Pending())

	select {
	case key := <-ran:
		assert.Equal(t, "u1", key)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDeferredTaskCancel(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())
	defer d.Stop()

	var runs atomic.Int32
	d.Schedule("u1", 30*time.Millisecond, func(ctx context.Context) { runs.Add(1) })
	d.Cancel("u1")
	d.Cancel("nobody")

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.Zero(t, d.Pending())
}

func TestDeferredTaskReschedule(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())
	defer d.Stop()

	ran := make(chan int, 2)
	d.Schedule("u1", 20*time.Millisecond, func(ctx context.Context) { ran <- 1 })
	d.Schedule("u1", 20*time.Millisecond, func(ctx context.Context) { ran <- 2 })

	select {
	case n := <-ran:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	select {
	case n := <-ran:
		t.Fatalf("replaced task ran: %d", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeferredTaskCancelWhileRunning(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())
	defer d.Stop()

	started := make(chan struct{})
	canceled := make(chan struct{})
	d.Schedule("u1", 0, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(canceled)
	})

	<-started
	d.Cancel("u1")
	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("running task was not canceled")
	}
}

func TestDeferredTasksStop(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())

	var runs atomic.Int32
	d.Schedule("u1", time.Hour, func(ctx context.Context) { runs.Add(1) })
	d.Schedule("u2", time.Hour, func(ctx context.Context) { runs.Add(1) })
	d.Stop()

	assert.Zero(t, d.Pending())
	d.Schedule("u3", 0, func(ctx context.Context) { runs.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestDeferredTaskPanicIsContained(t *testing.T) {
	d := NewDeferredTasks(logger.Nop())
	defer d.Stop()

	d.Schedule("u1", 0, func(ctx context.Context) { panic("boom") })
	require.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}
