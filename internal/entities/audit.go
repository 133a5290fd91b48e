package entities

import "time"

type AuditEventType string

const (
	AuditEventCreate  AuditEventType = "create"
	AuditEventUpdate  AuditEventType = "update"
	AuditEventDelete  AuditEventType = "delete"
	AuditEventCommit  AuditEventType = "commit"
	AuditEventCleanup AuditEventType = "cleanup"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one catalogue write, booklist save or sweep. School is the
// school code for booklist events and empty otherwise.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"index;size:50" json:"entity_type"`
	EntityID    *uint          `json:"entity_id,omitempty"`
	School      string         `gorm:"index;size:20" json:"school,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`
	RequestID   string         `gorm:"size:64" json:"request_id,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AuditQuery selects a newest-first page of events. Empty fields match
// everything.
type AuditQuery struct {
	Type       AuditEventType
	EntityType string
	School     string
	Status     AuditStatus
	Limit      int
	Offset     int
}
