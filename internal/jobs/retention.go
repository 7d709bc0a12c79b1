package jobs

import (
	"context"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

// EventPruner deletes all but the newest keep analytics events
type EventPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// RetentionJob periodically trims the analytics history
type RetentionJob struct {
	pruner   EventPruner
	keep     int
	interval time.Duration
	log      *logger.Logger
}

// NewRetentionJob creates a job keeping the newest keep events
func NewRetentionJob(pruner EventPruner, keep int, interval time.Duration, log *logger.Logger) *RetentionJob {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &RetentionJob{
		pruner:   pruner,
		keep:     keep,
		interval: interval,
		log:      log,
	}
}

// Run prunes once at start and then on every tick until ctx is done
func (j *RetentionJob) Run(ctx context.Context) error {
	j.log.Info("🧹 Analytics retention job started", "keep", j.keep, "interval", j.interval.String())

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		j.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce prunes a single time
func (j *RetentionJob) RunOnce(ctx context.Context) {
	dropped, err := j.pruner.Prune(ctx, j.keep)
	if err != nil {
		if ctx.Err() == nil {
			j.log.Error("❌ Analytics pruning failed", "error", err)
		}
		return
	}
	if dropped > 0 {
		j.log.Info("🧹 Pruned analytics events", "dropped", dropped, "kept", j.keep)
	}
}
