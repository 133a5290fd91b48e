package tasks

import (
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CleanupReporter is told the outcome of every cleanup run.
type CleanupReporter func(queue string, removed int64, err error)

// sweepQueueConfig is shared by the cleanup queues: a sweep is idempotent, so
// retries are cheap and only failures keep their payload.
func sweepQueueConfig(name string) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// sweep runs one deletion, reports it and wraps the error with the queue name.
func sweep(queue, what string, report CleanupReporter, run func() (int64, error)) error {
	removed, err := run()
	if report != nil {
		report(queue, removed, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", queue, err)
	}
	log.Printf("[TASK] %s: removed %d %s", queue, removed, what)
	return nil
}

func notConfigured(queue string) error {
	return fmt.Errorf("%s: cleaner not configured", queue)
}
