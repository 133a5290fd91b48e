// Package booknames provides database operations for catalog titles.
//
// Reads join subjects and publications so every BookName carries
// SubjectName and PublicationName. Missing references yield empty names.
package booknames

import (
	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	SubjectID uint
	CompanyID uint
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined() *gorm.DB {
	return r.db.Model(&entities.BookName{}).
		Select("booknames.*, COALESCE(subjects.name, '') AS subject_name, COALESCE(publications.name, '') AS publication_name").
		Joins("LEFT JOIN subjects ON subjects.id = booknames.subject_id").
		Joins("LEFT JOIN publications ON publications.id = booknames.company_id")
}

// List returns catalog titles, newest first.
func (r *Repository) List(filter Filter) ([]entities.BookName, error) {
	q := r.joined()
	if filter.SubjectID != 0 {
		q = q.Where("booknames.subject_id = ?", filter.SubjectID)
	}
	if filter.CompanyID != 0 {
		q = q.Where("booknames.company_id = ?", filter.CompanyID)
	}

	var names []entities.BookName
	err := q.Order("booknames.created_at DESC").Order("booknames.id DESC").Find(&names).Error
	return names, err
}

func (r *Repository) GetByID(id uint) (*entities.BookName, error) {
	var name entities.BookName
	if err := r.joined().Where("booknames.id = ?", id).Take(&name).Error; err != nil {
		return nil, err
	}
	return &name, nil
}

// ExistsBookNameID reports whether a title other than excludeID uses code.
func (r *Repository) ExistsBookNameID(code string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.BookName{}).Where("book_name_id = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(name *entities.BookName) error {
	return r.db.Create(name).Error
}

func (r *Repository) Update(name *entities.BookName) error {
	var existing entities.BookName
	if err := r.db.Select("id").First(&existing, name.ID).Error; err != nil {
		return err
	}
	return r.db.Model(&entities.BookName{}).Where("id = ?", name.ID).Updates(map[string]any{
		"book_name_id": name.BookNameID,
		"name":         name.Name,
		"subject_id":   name.SubjectID,
		"company_id":   name.CompanyID,
	}).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.BookName{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
