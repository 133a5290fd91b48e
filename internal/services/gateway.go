package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

var _ workflow.Gateway = (*LocalGateway)(nil)

// LocalGateway performs the single-row booklist writes of the fan-out commit
// against the store, with the same semantics as POST /api/booklist and
// POST /api/booklist/items.
type LocalGateway struct {
	store BooklistStore
	now   func() time.Time
}

// NewLocalGateway writes through store.
func NewLocalGateway(store BooklistStore) *LocalGateway {
	return &LocalGateway{store: store, now: time.Now}
}

// CreateBooklist always creates a new booklist in the current year's session.
func (g *LocalGateway) CreateBooklist(_ context.Context, schoolCode, class string) (*entities.Booklist, error) {
	if !entities.IsValidClass(class) {
		return nil, fmt.Errorf("%w: %q", booklists.ErrInvalidClass, class)
	}
	school, err := g.store.FindSchool(schoolCode)
	if err != nil {
		return nil, err
	}

	list := &entities.Booklist{
		SchoolID: school.ID,
		Class:    class,
		Session:  g.now().Year(),
	}
	if err := g.store.Create(list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddBooklistItem attaches one title to a booklist of the school named in req.
func (g *LocalGateway) AddBooklistItem(_ context.Context, req workflow.ItemRequest) (*entities.BooklistItemView, error) {
	school, err := g.store.FindSchool(req.SchoolCode)
	if err != nil {
		return nil, err
	}
	return g.store.AttachBook(school.ID, req.BooklistID, req.BookNameID, req.Class)
}
