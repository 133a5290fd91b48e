// Package services adapts the repositories to the booklist workflow so the
// server-rendered builder runs in-process, without HTTP round trips.
package services

import (
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// SubjectReader provides read-only access to subjects.
type SubjectReader interface {
	List() ([]entities.Subject, error)
}

// PublicationReader provides read-only access to publications.
type PublicationReader interface {
	List() ([]entities.Publication, error)
}

// BookNameReader lists catalog titles, optionally filtered.
type BookNameReader interface {
	List(filter booknames.Filter) ([]entities.BookName, error)
}

// PriceReader resolves the per-class prices of one title.
type PriceReader interface {
	Prices(bookNameID uint) (map[string]float64, error)
}

// BooklistStore is the subset of the booklist repository the workflow writes through.
type BooklistStore interface {
	FindSchool(code string) (*entities.School, error)
	Items(schoolID uint, session int) ([]entities.BooklistItemView, error)
	Create(list *entities.Booklist) error
	AttachBook(schoolID, booklistID, bookNameID uint, class string) (*entities.BooklistItemView, error)
	Commit(schoolCode string, session int, plans []booklists.ClassPlan) (*booklists.CommitResult, error)
}
