package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

const QueueCleanupAudit = "cleanup_audit_events"

// AuditEventCleaner drops audit events past their retention.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return sweepQueueConfig(QueueCleanupAudit)
}

func (t CleanupAuditEventsTask) retention() (int, time.Duration) {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, report CleanupReporter) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return notConfigured(QueueCleanupAudit)
		}
		days, retention := task.retention()
		return sweep(QueueCleanupAudit, fmt.Sprintf("audit events older than %d days", days), report, func() (int64, error) {
			return cleaner.DeleteOldEvents(retention)
		})
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, report CleanupReporter) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, report))
}
