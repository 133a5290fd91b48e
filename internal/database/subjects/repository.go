// Package subjects provides database operations for subjects.
package subjects

import (
	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all subjects ordered by id, highest first.
func (r *Repository) List() ([]entities.Subject, error) {
	var subjects []entities.Subject
	err := r.db.Order("id DESC").Find(&subjects).Error
	return subjects, err
}

func (r *Repository) GetByID(id uint) (*entities.Subject, error) {
	var subject entities.Subject
	if err := r.db.First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *Repository) Create(subject *entities.Subject) error {
	return r.db.Create(subject).Error
}

func (r *Repository) Update(subject *entities.Subject) error {
	if _, err := r.GetByID(subject.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.Subject{}).Where("id = ?", subject.ID).Updates(map[string]any{
		"subid": subject.SubID,
		"name":  subject.Name,
	}).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Subject{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
