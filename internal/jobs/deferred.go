package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

type deferredTask struct {
	id     uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// DeferredTasks runs delayed callbacks keyed by user. Scheduling a key
// replaces its pending task, and Cancel stops it before or while it runs.
type DeferredTasks struct {
	mu     sync.Mutex
	tasks  map[string]*deferredTask
	nextID uint64
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewDeferredTasks creates an empty scheduler
func NewDeferredTasks(log *logger.Logger) *DeferredTasks {
	ctx, stop := context.WithCancel(context.Background())
	return &DeferredTasks{
		tasks: make(map[string]*deferredTask),
		ctx:   ctx,
		stop:  stop,
		log:   log,
	}
}

// Schedule runs fn after delay unless the key is canceled or rescheduled
// first. fn's context is canceled when that happens while it runs.
func (d *DeferredTasks) Schedule(key string, delay time.Duration, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx.Err() != nil {
		return
	}
	d.cancelLocked(key)

	d.nextID++
	id := d.nextID
	taskCtx, cancel := context.WithCancel(d.ctx)
	task := &deferredTask{id: id, cancel: cancel}
	d.tasks[key] = task

	d.wg.Add(1)
	task.timer = time.AfterFunc(delay, func() {
		defer d.wg.Done()
		defer d.finish(key, id)
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("🔥 Deferred task panicked", "key", key, "panic", r)
			}
		}()

		if taskCtx.Err() != nil {
			return
		}
		fn(taskCtx)
	})
}

// Cancel drops the key's pending task, if any
func (d *DeferredTasks) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

func (d *DeferredTasks) cancelLocked(key string) {
	task, ok := d.tasks[key]
	if !ok {
		return
	}
	delete(d.tasks, key)
	task.cancel()
	if task.timer.Stop() {
		d.wg.Done()
	}
}

func (d *DeferredTasks) finish(key string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if task, ok := d.tasks[key]; ok && task.id == id {
		task.cancel()
		delete(d.tasks, key)
	}
}

// Pending is the number of scheduled or running tasks
func (d *DeferredTasks) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Stop cancels every task and waits for running ones to return. Tasks that
// have not fired yet are dropped.
func (d *DeferredTasks) Stop() {
	d.mu.Lock()
	d.stop()
	for key := range d.tasks {
		d.cancelLocked(key)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("🛑 Deferred tasks stopped")
}
