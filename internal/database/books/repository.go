// Package books provides database operations for book entries, the per-class
// price and quantity variants of a catalog title.
package books

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

func (r *Repository) joined() *gorm.DB {
	return r.db.Model(&entities.BookEntry{}).
		Select(`books.*,
			COALESCE(booknames.name, '') AS book_name,
			COALESCE(subjects.name, '') AS subject_name,
			COALESCE(publications.name, '') AS publication_name`).
		Joins("LEFT JOIN booknames ON booknames.id = books.book_name_id").
		Joins("LEFT JOIN subjects ON subjects.id = booknames.subject_id").
		Joins("LEFT JOIN publications ON publications.id = booknames.company_id")
}

// List returns all entries joined with their title, subject and publication, newest first.
func (r *Repository) List() ([]entities.BookEntry, error) {
	var entries []entities.BookEntry
	err := r.joined().Order("books.created_at DESC").Order("books.id DESC").Find(&entries).Error
	return entries, err
}

func (r *Repository) GetByID(id uint) (*entities.BookEntry, error) {
	var entry entities.BookEntry
	if err := r.joined().Where("books.id = ?", id).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByClassAndBookName resolves the entry of a title for one class.
func (r *Repository) FindByClassAndBookName(class string, bookNameID uint) (*entities.BookEntry, error) {
	var entry entities.BookEntry
	err := r.db.Where("class = ? AND book_name_id = ?", class, bookNameID).Order("id").First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Prices maps class to price for every entry of a title.
// An empty map means the title has no entries.
func (r *Repository) Prices(bookNameID uint) (map[string]float64, error) {
	var entries []entities.BookEntry
	if err := r.db.Select("class", "price").Where("book_name_id = ?", bookNameID).Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(entries))
	for _, e := range entries {
		prices[e.Class] = e.Price
	}
	return prices, nil
}

// CreateEntries inserts entries for one title in a single transaction.
func (r *Repository) CreateEntries(bookNameID uint, entries []entities.BookEntry) ([]entities.BookEntry, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			entries[i].BookNameID = bookNameID
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) Update(entry *entities.BookEntry) error {
	var existing entities.BookEntry
	if err := r.db.Select("id").First(&existing, entry.ID).Error; err != nil {
		return err
	}
	return r.db.Model(&entities.BookEntry{}).Where("id = ?", entry.ID).Updates(map[string]any{
		"class":    entry.Class,
		"price":    entry.Price,
		"quantity": entry.Quantity,
	}).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.BookEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
