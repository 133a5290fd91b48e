package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

const QueueCleanupBooklists = "cleanup_booklists"

// EmptyBooklistCleaner deletes booklists that never received an item.
type EmptyBooklistCleaner interface {
	DeleteEmptyOlderThan(cutoff time.Time) (int64, error)
}

// CleanupBooklistsTask removes empty booklists left behind by a save that
// failed between creating booklists and attaching their items.
type CleanupBooklistsTask struct {
	GracePeriodMinutes int `json:"grace_period_minutes"`
}

func (t CleanupBooklistsTask) Config() backlite.QueueConfig {
	return sweepQueueConfig(QueueCleanupBooklists)
}

func (t CleanupBooklistsTask) gracePeriod() time.Duration {
	if t.GracePeriodMinutes <= 0 {
		return DefaultGracePeriod
	}
	return time.Duration(t.GracePeriodMinutes) * time.Minute
}

// CleanupBooklistsProcessor sweeps empty booklists created before now minus
// the task's grace period.
func CleanupBooklistsProcessor(cleaner EmptyBooklistCleaner, report CleanupReporter, now func() time.Time) backlite.QueueProcessor[CleanupBooklistsTask] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, task CleanupBooklistsTask) error {
		if cleaner == nil {
			return notConfigured(QueueCleanupBooklists)
		}
		grace := task.gracePeriod()
		cutoff := now().Add(-grace)
		return sweep(QueueCleanupBooklists, fmt.Sprintf("empty booklists older than %s", grace), report, func() (int64, error) {
			return cleaner.DeleteEmptyOlderThan(cutoff)
		})
	}
}

func NewCleanupBooklistsQueue(cleaner EmptyBooklistCleaner, report CleanupReporter) backlite.Queue {
	return backlite.NewQueue(CleanupBooklistsProcessor(cleaner, report, time.Now))
}
