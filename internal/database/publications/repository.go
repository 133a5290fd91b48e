// Package publications provides database operations for publishers.
package publications

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

// List returns all publications, newest first.
func (r *Repository) List() ([]entities.Publication, error) {
	var pubs []entities.Publication
	err := r.db.Order("created_at DESC").Order("id DESC").Find(&pubs).Error
	return pubs, err
}

func (r *Repository) GetByID(id uint) (*entities.Publication, error) {
	var pub entities.Publication
	if err := r.db.First(&pub, id).Error; err != nil {
		return nil, err
	}
	return &pub, nil
}

// ExistsPubID reports whether a publication other than excludeID uses pubID.
func (r *Repository) ExistsPubID(pubID string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.Publication{}).Where("pubid = ?", pubID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(pub *entities.Publication) error {
	return r.db.Create(pub).Error
}

func (r *Repository) Update(pub *entities.Publication) error {
	if _, err := r.GetByID(pub.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.Publication{}).Where("id = ?", pub.ID).Updates(map[string]any{
		"pubid": pub.PubID,
		"name":  pub.Name,
		"city":  pub.City,
	}).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Publication{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
