package http

import (
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// This file consolidates all store interface definitions used by HTTP controllers.
// Each controller depends on its own interface; the repositories under
// internal/database satisfy them.

type SchoolStore interface {
	List() ([]entities.School, error)
	GetByID(id uint) (*entities.School, error)
	ExistsSchoolID(code string, excludeID uint) (bool, error)
	Create(school *entities.School) error
	Update(school *entities.School) error
	Delete(id uint) error
}

type SubjectStore interface {
	List() ([]entities.Subject, error)
	GetByID(id uint) (*entities.Subject, error)
	Create(subject *entities.Subject) error
	Update(subject *entities.Subject) error
	Delete(id uint) error
}

type PublicationStore interface {
	List() ([]entities.Publication, error)
	GetByID(id uint) (*entities.Publication, error)
	ExistsPubID(pubID string, excludeID uint) (bool, error)
	Create(pub *entities.Publication) error
	Update(pub *entities.Publication) error
	Delete(id uint) error
}

type BookNameStore interface {
	List(filter booknames.Filter) ([]entities.BookName, error)
	GetByID(id uint) (*entities.BookName, error)
	ExistsBookNameID(code string, excludeID uint) (bool, error)
	Create(name *entities.BookName) error
	Update(name *entities.BookName) error
	Delete(id uint) error
}

// BookNameGetter resolves the title a set of book entries belongs to.
type BookNameGetter interface {
	GetByID(id uint) (*entities.BookName, error)
}

type BookEntryStore interface {
	List() ([]entities.BookEntry, error)
	GetByID(id uint) (*entities.BookEntry, error)
	Prices(bookNameID uint) (map[string]float64, error)
	CreateEntries(bookNameID uint, entries []entities.BookEntry) ([]entities.BookEntry, error)
	Update(entry *entities.BookEntry) error
	Delete(id uint) error
}

type BooklistStore interface {
	FindSchool(code string) (*entities.School, error)
	Overview(schoolID uint, requested, currentYear int) (*entities.BooklistSessions, error)
	ListBySchool(schoolID uint) ([]entities.Booklist, error)
	Create(list *entities.Booklist) error
	Delete(schoolID, booklistID uint) error
	Items(schoolID uint, session int) ([]entities.BooklistItemView, error)
	AttachBook(schoolID, booklistID, bookNameID uint, class string) (*entities.BooklistItemView, error)
	Commit(schoolCode string, session int, plans []booklists.ClassPlan) (*booklists.CommitResult, error)
}
