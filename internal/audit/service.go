package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/database/audit"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// Service provides high-level audit logging functionality.
// A nil *Service discards every event.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every LogAsync call has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

func entityEvent(eventType entities.AuditEventType, verb, entityType string, entityID uint, name, requestID string) *entities.AuditEvent {
	return &entities.AuditEvent{
		EventType:   eventType,
		Action:      entityType + "_" + string(eventType),
		Description: verb + " " + entityType + ": " + name,
		EntityType:  entityType,
		EntityID:    &entityID,
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	}
}

// LogCreate records a created row, e.g. LogCreate("school", 3, "SCH1", rid).
func (s *Service) LogCreate(entityType string, entityID uint, name, requestID string) {
	s.LogAsync(entityEvent(entities.AuditEventCreate, "Created", entityType, entityID, name, requestID))
}

func (s *Service) LogUpdate(entityType string, entityID uint, name, requestID string) {
	s.LogAsync(entityEvent(entities.AuditEventUpdate, "Updated", entityType, entityID, name, requestID))
}

func (s *Service) LogDelete(entityType string, entityID uint, name, requestID string) {
	s.LogAsync(entityEvent(entities.AuditEventDelete, "Deleted", entityType, entityID, name, requestID))
}

// LogCommit records a booklist build save.
func (s *Service) LogCommit(schoolCode, mode string, booklists, items int, requestID string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCommit,
		Action:      "booklist_commit_" + mode,
		Description: fmt.Sprintf("Saved %d booklists with %d items for school %s", booklists, items, schoolCode),
		EntityType:  "booklist",
		School:      schoolCode,
		RequestID:   requestID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"school":    schoolCode,
		"mode":      mode,
		"booklists": booklists,
		"items":     items,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Description = "Failed to save booklists for school " + schoolCode
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogCleanup records a background sweep.
func (s *Service) LogCleanup(action string, removed int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCleanup,
		Action:      action,
		Description: fmt.Sprintf("Removed %d rows", removed),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// List pages through recorded events, newest first.
func (s *Service) List(q entities.AuditQuery) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(q)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
