// Package booklists provides database operations for booklists and their items.
//
// A booklist is scoped to a school, a class and a session year. Items attach
// book entries resolved by (class, booknames.id). Commit writes a whole
// multi-class plan in one transaction; the HTTP create/attach endpoints used by
// the client-side workflow do not.
package booklists

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

var (
	ErrSchoolNotFound   = errors.New("school not found")
	ErrBooklistNotFound = errors.New("booklist not found")
	ErrBookNotFound     = errors.New("book not found for this class")
	ErrClassMismatch    = errors.New("book class does not match booklist class")
	ErrInvalidClass     = errors.New("invalid class")
)

// ClassPlan lists the titles (booknames.id) to attach to one class.
type ClassPlan struct {
	Class       string `json:"class"`
	BookNameIDs []uint `json:"book_ids"`
}

// CommitResult holds the booklists and items touched by a commit.
type CommitResult struct {
	Booklists []entities.Booklist         `json:"booklists"`
	Items     []entities.BooklistItemView `json:"items"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindSchool resolves a school by its user-assigned code.
func (r *Repository) FindSchool(code string) (*entities.School, error) {
	return findSchool(r.db, code)
}

func findSchool(db *gorm.DB, code string) (*entities.School, error) {
	var school entities.School
	err := db.Where("school_id = ?", code).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSchoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

// Sessions returns the distinct sessions of a school, latest first.
func (r *Repository) Sessions(schoolID uint) ([]int, error) {
	sessions := []int{}
	err := r.db.Model(&entities.Booklist{}).
		Where("school_id = ?", schoolID).
		Distinct("session").
		Order("session DESC").
		Pluck("session", &sessions).Error
	return sessions, err
}

// Overview builds the session selector payload. The current session is the
// requested one when non-zero, else the latest stored, else currentYear.
func (r *Repository) Overview(schoolID uint, requested, currentYear int) (*entities.BooklistSessions, error) {
	sessions, err := r.Sessions(schoolID)
	if err != nil {
		return nil, err
	}

	current := requested
	if current == 0 {
		if len(sessions) > 0 {
			current = sessions[0]
		} else {
			current = currentYear
		}
	}

	lists, err := r.ListBySession(schoolID, current)
	if err != nil {
		return nil, err
	}

	return &entities.BooklistSessions{
		Sessions:       sessions,
		CurrentSession: current,
		Booklists:      lists,
	}, nil
}

// ListBySession returns a school's booklists for one session, in class order.
func (r *Repository) ListBySession(schoolID uint, session int) ([]entities.Booklist, error) {
	lists := []entities.Booklist{}
	err := r.db.Where("school_id = ? AND session = ?", schoolID, session).Order("id").Find(&lists).Error
	if err != nil {
		return nil, err
	}
	sortByClass(lists)
	return lists, nil
}

// ListBySchool returns every booklist of a school, in class order.
func (r *Repository) ListBySchool(schoolID uint) ([]entities.Booklist, error) {
	lists := []entities.Booklist{}
	err := r.db.Where("school_id = ?", schoolID).Order("session DESC").Order("id").Find(&lists).Error
	if err != nil {
		return nil, err
	}
	sortByClass(lists)
	return lists, nil
}

func sortByClass(lists []entities.Booklist) {
	sort.SliceStable(lists, func(i, j int) bool {
		return entities.ClassIndex(lists[i].Class) < entities.ClassIndex(lists[j].Class)
	})
}

// Create inserts a booklist. Repeated calls for the same school, class and
// session create distinct rows.
func (r *Repository) Create(list *entities.Booklist) error {
	return r.db.Create(list).Error
}

// GetForSchool loads a booklist only if it belongs to schoolID.
func (r *Repository) GetForSchool(schoolID, booklistID uint) (*entities.Booklist, error) {
	return getForSchool(r.db, schoolID, booklistID)
}

func getForSchool(db *gorm.DB, schoolID, booklistID uint) (*entities.Booklist, error) {
	var list entities.Booklist
	err := db.Where("id = ? AND school_id = ?", booklistID, schoolID).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBooklistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// Delete removes a booklist scoped to a school, together with its items.
func (r *Repository) Delete(schoolID, booklistID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		list, err := getForSchool(tx, schoolID, booklistID)
		if err != nil {
			return err
		}
		if err := tx.Where("booklist_id = ?", list.ID).Delete(&entities.BooklistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(list).Error
	})
}

func itemViews(db *gorm.DB) *gorm.DB {
	return db.Table("booklist_items").
		Select(`booklist_items.id, booklist_items.book_id, booklist_items.booklist_id, booklist_items.created_at,
			COALESCE(booknames.name, '') AS book_name,
			COALESCE(subjects.name, '') AS subject_name,
			COALESCE(publications.name, '') AS publication_name,
			COALESCE(books.price, 0) AS book_price,
			booklist.class AS class`).
		Joins("JOIN booklist ON booklist.id = booklist_items.booklist_id").
		Joins("LEFT JOIN books ON books.id = booklist_items.book_id").
		Joins("LEFT JOIN booknames ON booknames.id = books.book_name_id").
		Joins("LEFT JOIN subjects ON subjects.id = booknames.subject_id").
		Joins("LEFT JOIN publications ON publications.id = booknames.company_id")
}

// Items returns the joined items of every booklist of a school in one session.
func (r *Repository) Items(schoolID uint, session int) ([]entities.BooklistItemView, error) {
	views := []entities.BooklistItemView{}
	err := itemViews(r.db).
		Where("booklist.school_id = ? AND booklist.session = ?", schoolID, session).
		Order("booklist_items.id").
		Scan(&views).Error
	return views, err
}

// AttachBook adds the entry of title bookNameID for class to a booklist of the
// school. An empty class defaults to the booklist's class.
func (r *Repository) AttachBook(schoolID, booklistID, bookNameID uint, class string) (*entities.BooklistItemView, error) {
	var view *entities.BooklistItemView
	err := r.db.Transaction(func(tx *gorm.DB) error {
		list, err := getForSchool(tx, schoolID, booklistID)
		if err != nil {
			return err
		}
		if class == "" {
			class = list.Class
		}
		if class != list.Class {
			return ErrClassMismatch
		}

		item, err := attach(tx, list.ID, class, bookNameID)
		if err != nil {
			return err
		}

		views := []entities.BooklistItemView{}
		if err := itemViews(tx).Where("booklist_items.id = ?", item.ID).Scan(&views).Error; err != nil {
			return err
		}
		if len(views) == 1 {
			view = &views[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func attach(tx *gorm.DB, booklistID uint, class string, bookNameID uint) (*entities.BooklistItem, error) {
	var entry entities.BookEntry
	err := tx.Where("class = ? AND book_name_id = ?", class, bookNameID).Order("id").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	item := &entities.BooklistItem{BookID: entry.ID, BooklistID: booklistID}
	if err := tx.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Commit writes a multi-class plan atomically. Each class reuses the oldest
// booklist for (school, class, session) or creates one; titles already on a
// reused booklist are not attached twice. Any failure rolls back everything.
func (r *Repository) Commit(schoolCode string, session int, plans []ClassPlan) (*CommitResult, error) {
	result := &CommitResult{
		Booklists: []entities.Booklist{},
		Items:     []entities.BooklistItemView{},
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		school, err := findSchool(tx, schoolCode)
		if err != nil {
			return err
		}

		var itemIDs []uint
		for _, plan := range plans {
			if !entities.IsValidClass(plan.Class) {
				return fmt.Errorf("%w: %q", ErrInvalidClass, plan.Class)
			}

			list, err := findOrCreate(tx, school.ID, plan.Class, session)
			if err != nil {
				return err
			}
			result.Booklists = append(result.Booklists, *list)

			for _, bookNameID := range plan.BookNameIDs {
				present, err := hasTitle(tx, list.ID, bookNameID)
				if err != nil {
					return err
				}
				if present {
					continue
				}
				item, err := attach(tx, list.ID, plan.Class, bookNameID)
				if err != nil {
					return fmt.Errorf("class %s, book %d: %w", plan.Class, bookNameID, err)
				}
				itemIDs = append(itemIDs, item.ID)
			}
		}

		if len(itemIDs) == 0 {
			return nil
		}
		return itemViews(tx).
			Where("booklist_items.id IN ?", itemIDs).
			Order("booklist_items.id").
			Scan(&result.Items).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func findOrCreate(tx *gorm.DB, schoolID uint, class string, session int) (*entities.Booklist, error) {
	var list entities.Booklist
	err := tx.Where("school_id = ? AND class = ? AND session = ?", schoolID, class, session).Order("id").First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = entities.Booklist{SchoolID: schoolID, Class: class, Session: session}
	if err := tx.Create(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func hasTitle(tx *gorm.DB, booklistID, bookNameID uint) (bool, error) {
	var count int64
	err := tx.Model(&entities.BooklistItem{}).
		Joins("JOIN books ON books.id = booklist_items.book_id").
		Where("booklist_items.booklist_id = ? AND books.book_name_id = ?", booklistID, bookNameID).
		Count(&count).Error
	return count > 0, err
}

// DeleteEmptyOlderThan removes booklists without items created before cutoff.
// These are left behind when a client-side commit fails between its phases.
func (r *Repository) DeleteEmptyOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("created_at < ?", cutoff).
		Where("id NOT IN (?)", r.db.Model(&entities.BooklistItem{}).Select("booklist_id")).
		Delete(&entities.Booklist{})
	return result.RowsAffected, result.Error
}
