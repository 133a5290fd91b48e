// Package scheduler enqueues periodic background tasks on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

// TaskEnqueuer saves tasks to the queue.
type TaskEnqueuer interface {
	Enqueue(tasks ...backlite.Task) ([]string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// CleanupScheduler enqueues the cleanup tasks on a cron schedule. The tasks
// run on the queue workers, not on the cron goroutine.
type CleanupScheduler struct {
	queue    TaskEnqueuer
	schedule string
	tasks    []backlite.Task

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewCleanupScheduler(queue TaskEnqueuer, schedule string, tasks ...backlite.Task) *CleanupScheduler {
	return &CleanupScheduler{
		queue:    queue,
		schedule: schedule,
		tasks:    tasks,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. It stops when ctx is cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(); err != nil {
			log.Printf("[SCHEDULER] Cleanup enqueue failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Cleanup started with schedule '%s'. Next run: %v", s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running enqueue to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.cancelFunc()
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("[SCHEDULER] Cleanup stopped")
}

// RunNow enqueues every cleanup task immediately.
func (s *CleanupScheduler) RunNow() error {
	if len(s.tasks) == 0 {
		return nil
	}
	ids, err := s.queue.Enqueue(s.tasks...)
	if err != nil {
		return err
	}
	log.Printf("[SCHEDULER] Enqueued %d cleanup tasks", len(ids))
	return nil
}

func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next enqueue will occur, or nil when stopped.
func (s *CleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}
