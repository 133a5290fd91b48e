package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

const defaultLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// List returns the page selected by q and the number of matching events.
func (r *Repository) List(q entities.AuditQuery) ([]entities.AuditEvent, int64, error) {
	tx := r.db.Model(&entities.AuditEvent{})
	for column, value := range map[string]string{
		"event_type":  string(q.Type),
		"entity_type": q.EntityType,
		"school":      q.School,
		"status":      string(q.Status),
	} {
		if value != "" {
			tx = tx.Where(column+" = ?", value)
		}
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	var events []entities.AuditEvent
	err := tx.Order("created_at DESC, id DESC").Limit(limit).Offset(max(q.Offset, 0)).Find(&events).Error
	return events, total, err
}

// DeleteOldEvents drops events older than retention and returns how many went.
func (r *Repository) DeleteOldEvents(retention time.Duration) (int64, error) {
	res := r.db.Where("created_at < ?", time.Now().Add(-retention)).Delete(&entities.AuditEvent{})
	return res.RowsAffected, res.Error
}
