package services

import (
	"context"

	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

var _ workflow.Catalog = (*Catalog)(nil)

// Catalog serves workflow reads straight from the repositories.
type Catalog struct {
	subjects     SubjectReader
	publications PublicationReader
	bookNames    BookNameReader
	prices       PriceReader
	booklists    BooklistStore
}

// NewCatalog reads through the given repositories. lists resolves school
// codes and saved items.
func NewCatalog(subjects SubjectReader, publications PublicationReader, bookNames BookNameReader, prices PriceReader, lists BooklistStore) *Catalog {
	return &Catalog{
		subjects:     subjects,
		publications: publications,
		bookNames:    bookNames,
		prices:       prices,
		booklists:    lists,
	}
}

// Subjects lists every subject; the context is unused.
func (c *Catalog) Subjects(_ context.Context) ([]entities.Subject, error) {
	return c.subjects.List()
}

func (c *Catalog) Publications(_ context.Context) ([]entities.Publication, error) {
	return c.publications.List()
}

// BookNames lists titles with their subject and publication names. Zero
// filter fields match everything.
func (c *Catalog) BookNames(_ context.Context, filter workflow.BookFilter) ([]entities.BookName, error) {
	return c.bookNames.List(booknames.Filter{
		SubjectID: filter.SubjectID,
		CompanyID: filter.PublicationID,
	})
}

// Prices returns workflow.ErrNoPrices for a title without entries, matching
// the 404 of GET /api/books/price.
func (c *Catalog) Prices(_ context.Context, bookNameID uint) (map[string]float64, error) {
	prices, err := c.prices.Prices(bookNameID)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, workflow.ErrNoPrices
	}
	return prices, nil
}

// BooklistItems returns the saved items of a school in session, or
// booklists.ErrSchoolNotFound for an unknown code.
func (c *Catalog) BooklistItems(_ context.Context, schoolCode string, session int) ([]entities.BooklistItemView, error) {
	school, err := c.booklists.FindSchool(schoolCode)
	if err != nil {
		return nil, err
	}
	return c.booklists.Items(school.ID, session)
}
