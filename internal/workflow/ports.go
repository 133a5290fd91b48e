package workflow

import (
	"context"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// BookFilter narrows the title list. Zero fields match everything.
type BookFilter struct {
	SubjectID     uint
	PublicationID uint
}

// Catalog reads the data a build needs. Prices returns ErrNoPrices when the
// title has no entries at all.
type Catalog interface {
	Subjects(ctx context.Context) ([]entities.Subject, error)
	Publications(ctx context.Context) ([]entities.Publication, error)
	BookNames(ctx context.Context, filter BookFilter) ([]entities.BookName, error)
	Prices(ctx context.Context, bookNameID uint) (map[string]float64, error)
	BooklistItems(ctx context.Context, schoolCode string, session int) ([]entities.BooklistItemView, error)
}

type ItemRequest struct {
	SchoolCode string
	BooklistID uint
	BookNameID uint
	Class      string
}

// Gateway performs the single-row writes used by FanOutCommitter.
type Gateway interface {
	CreateBooklist(ctx context.Context, schoolCode, class string) (*entities.Booklist, error)
	AddBooklistItem(ctx context.Context, req ItemRequest) (*entities.BooklistItemView, error)
}

// CommitResult is what a commit created, booklists in staged class order.
type CommitResult struct {
	Booklists []entities.Booklist         `json:"booklists"`
	Items     []entities.BooklistItemView `json:"items"`
}

// Committer persists a staged build for a school and session.
type Committer interface {
	Commit(ctx context.Context, schoolCode string, session int, staged []StagedClass) (*CommitResult, error)
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, schoolCode string, session int, staged []StagedClass) (*CommitResult, error)

func (f CommitterFunc) Commit(ctx context.Context, schoolCode string, session int, staged []StagedClass) (*CommitResult, error) {
	return f(ctx, schoolCode, session, staged)
}
