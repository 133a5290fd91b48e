package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// Controller owns the build of one school. Every method is safe for
// concurrent use; catalog calls happen under the lock so transitions apply
// in request order.
type Controller struct {
	mu        sync.Mutex
	school    string
	session   int
	catalog   Catalog
	committer Committer

	state State
	items []entities.BooklistItemView
}

// NewController creates an empty build for school. Call Load before use.
func NewController(school string, catalog Catalog, committer Committer) *Controller {
	return &Controller{
		school:    school,
		catalog:   catalog,
		committer: committer,
	}
}

// Load fills the subject, publication and title caches and the saved items
// of session. Any staged build is kept.
func (c *Controller) Load(ctx context.Context, session int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	subjects, err := c.catalog.Subjects(ctx)
	if err != nil {
		return fmt.Errorf("load subjects: %w", err)
	}
	pubs, err := c.catalog.Publications(ctx)
	if err != nil {
		return fmt.Errorf("load publications: %w", err)
	}

	c.session = session
	c.state.Subjects = subjects
	c.state.Publications = pubs
	if err := c.refreshBooks(ctx); err != nil {
		return err
	}
	return c.refreshItems(ctx)
}

func (c *Controller) refreshBooks(ctx context.Context) error {
	books, err := c.catalog.BookNames(ctx, BookFilter{
		SubjectID:     c.state.SelectedSubject,
		PublicationID: c.state.SelectedPublication,
	})
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	c.state = WithBooks(c.state, books)
	return nil
}

func (c *Controller) refreshItems(ctx context.Context) error {
	items, err := c.catalog.BooklistItems(ctx, c.school, c.session)
	if err != nil {
		return fmt.Errorf("load booklist items: %w", err)
	}
	c.items = items
	return nil
}

// School is the school code the build belongs to.
func (c *Controller) School() string {
	return c.school
}

// Session is the session passed to the last Load.
func (c *Controller) Session() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// State returns a copy of the current build.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Items returns the saved booklist items of the loaded session.
func (c *Controller) Items() []entities.BooklistItemView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.BooklistItemView, len(c.items))
	copy(out, c.items)
	return out
}

// SelectSubject filters the title list by subject (0 for all) and clears
// the selected title. The list is refetched from the catalog.
func (c *Controller) SelectSubject(ctx context.Context, subjectID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SelectSubject(c.state, subjectID)
	return c.refreshBooks(ctx)
}

// SelectPublication is SelectSubject for the publication filter.
func (c *Controller) SelectPublication(ctx context.Context, publicationID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SelectPublication(c.state, publicationID)
	return c.refreshBooks(ctx)
}

// SelectBook picks the title to stage next. It is checked by Simulate.
func (c *Controller) SelectBook(bookID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SelectBook(c.state, bookID)
}

// SelectClasses replaces the picked classes. Unknown labels are dropped.
func (c *Controller) SelectClasses(classes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SelectClasses(c.state, classes)
}

// Simulate stages the current selection. The price map is fetched once for
// all selected classes; a title without entries stages with unknown prices.
// On a fetch failure the build is left unchanged.
func (c *Controller) Simulate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	book, _, err := PendingEntry(c.state)
	if err != nil {
		return err
	}

	prices, err := c.catalog.Prices(ctx, book.ID)
	if errors.Is(err, ErrNoPrices) {
		prices, err = map[string]float64{}, nil
	}
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	next, err := Stage(c.state, prices)
	if err != nil {
		return err
	}
	c.state = next

	// Filters were cleared; reload the unfiltered title list.
	return c.refreshBooks(ctx)
}

// Remove unstages bookID from class and frees its subject once no class
// holds it.
func (c *Controller) Remove(class string, bookID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Unstage(c.state, class, bookID)
}

// Save commits the staged build. On success the saved items are reloaded and
// the build is reset; on failure the build is kept so the user can retry.
func (c *Controller) Save(ctx context.Context) (*CommitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.Simulated) == 0 {
		return nil, ErrNothingStaged
	}

	result, err := c.committer.Commit(ctx, c.school, c.session, c.state.clone().Simulated)
	if err != nil {
		if !errors.Is(err, ErrCommitFailed) {
			err = fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		return nil, err
	}

	log.Printf("[COMMIT] school %s: saved %d booklists, %d items", c.school, len(result.Booklists), len(result.Items))

	c.state = Reset(c.state)
	if err := c.refreshItems(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Cancel discards the build without any requests.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reset(c.state)
}
