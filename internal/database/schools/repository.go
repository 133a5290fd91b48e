// Package schools provides database operations for school management.
//
// This package implements the SchoolStore interface defined in internal/http/schools.go.
//
//	repo := schools.NewRepository(db)
//	school, err := repo.GetBySchoolID("SCH1")
package schools

import (
	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// Repository handles all school database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new schools repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all schools, newest first.
func (r *Repository) List() ([]entities.School, error) {
	var schools []entities.School
	err := r.db.Order("created_at DESC").Order("id DESC").Find(&schools).Error
	return schools, err
}

func (r *Repository) GetByID(id uint) (*entities.School, error) {
	var school entities.School
	if err := r.db.First(&school, id).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

// GetBySchoolID looks a school up by its user-assigned code.
func (r *Repository) GetBySchoolID(code string) (*entities.School, error) {
	var school entities.School
	if err := r.db.Where("school_id = ?", code).First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

// ExistsSchoolID reports whether another school already uses code.
// excludeID skips the row being updated; pass 0 on create.
func (r *Repository) ExistsSchoolID(code string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.School{}).Where("school_id = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(school *entities.School) error {
	return r.db.Create(school).Error
}

// Update saves the mutable fields of an existing school.
// Returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) Update(school *entities.School) error {
	if _, err := r.GetByID(school.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.School{}).Where("id = ?", school.ID).Updates(map[string]any{
		"school_id": school.SchoolID,
		"name":      school.Name,
		"city":      school.City,
		"contact":   school.Contact,
		"email":     school.Email,
	}).Error
}

// Delete removes a school regardless of dependent booklists.
// Returns gorm.ErrRecordNotFound when no row matches.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.School{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
