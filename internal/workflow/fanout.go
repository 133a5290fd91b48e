package workflow

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

const DefaultCommitConcurrency = 4

// FanOutCommitter writes a build through a Gateway in two phases: create one
// booklist per class, then attach every staged title. Calls within a phase run
// concurrently; the second phase starts only after the first has fully
// resolved. Booklists are matched to classes by the class the server returns.
//
// The session argument is ignored: the create-booklist endpoint stamps the
// current year.
type FanOutCommitter struct {
	Gateway     Gateway
	Concurrency int
}

// NewFanOutCommitter writes through gw with at most concurrency calls in
// flight per phase. A concurrency below 1 means DefaultCommitConcurrency.
func NewFanOutCommitter(gw Gateway, concurrency int) *FanOutCommitter {
	return &FanOutCommitter{Gateway: gw, Concurrency: concurrency}
}

func (f *FanOutCommitter) limit() int {
	if f.Concurrency <= 0 {
		return DefaultCommitConcurrency
	}
	return f.Concurrency
}

// Commit creates the booklists, then attaches the titles. The first failure
// stops the commit and is returned wrapped in ErrCommitFailed; booklists
// already created are not rolled back.
func (f *FanOutCommitter) Commit(ctx context.Context, schoolCode string, _ int, staged []StagedClass) (*CommitResult, error) {
	if len(staged) == 0 {
		return nil, ErrNothingStaged
	}

	byClass, err := f.createBooklists(ctx, schoolCode, staged)
	if err != nil {
		log.Printf("[COMMIT] school %s: booklist phase failed: %v", schoolCode, err)
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	items, err := f.attachItems(ctx, schoolCode, staged, byClass)
	if err != nil {
		log.Printf("[COMMIT] school %s: item phase failed, %d booklists left without all items: %v", schoolCode, len(byClass), err)
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	result := &CommitResult{Items: items}
	for _, sc := range staged {
		if bl, ok := byClass[sc.Class]; ok {
			result.Booklists = append(result.Booklists, bl)
			delete(byClass, sc.Class)
		}
	}
	return result, nil
}

func (f *FanOutCommitter) createBooklists(ctx context.Context, schoolCode string, staged []StagedClass) (map[string]entities.Booklist, error) {
	var classes []string
	for _, sc := range staged {
		if !slices.Contains(classes, sc.Class) {
			classes = append(classes, sc.Class)
		}
	}

	var (
		mu      sync.Mutex
		byClass = make(map[string]entities.Booklist, len(classes))
		g       errgroup.Group
	)
	g.SetLimit(f.limit())

	for _, class := range classes {
		g.Go(func() error {
			bl, err := f.Gateway.CreateBooklist(ctx, schoolCode, class)
			if err != nil {
				return fmt.Errorf("create booklist for class %s: %w", class, err)
			}
			mu.Lock()
			byClass[bl.Class] = *bl
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, class := range classes {
		if _, ok := byClass[class]; !ok {
			return nil, fmt.Errorf("no booklist returned for class %s", class)
		}
	}
	return byClass, nil
}

func (f *FanOutCommitter) attachItems(ctx context.Context, schoolCode string, staged []StagedClass, byClass map[string]entities.Booklist) ([]entities.BooklistItemView, error) {
	var (
		mu    sync.Mutex
		items []entities.BooklistItemView
		g     errgroup.Group
	)
	g.SetLimit(f.limit())

	for _, sc := range staged {
		booklistID := byClass[sc.Class].ID
		for _, book := range sc.Books {
			g.Go(func() error {
				item, err := f.Gateway.AddBooklistItem(ctx, ItemRequest{
					SchoolCode: schoolCode,
					BooklistID: booklistID,
					BookNameID: book.Book.ID,
					Class:      sc.Class,
				})
				if err != nil {
					return fmt.Errorf("add %q to class %s: %w", book.Book.Name, sc.Class, err)
				}
				mu.Lock()
				items = append(items, *item)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, func(a, b entities.BooklistItemView) int {
		if d := entities.ClassIndex(a.Class) - entities.ClassIndex(b.Class); d != 0 {
			return d
		}
		return int(a.ID) - int(b.ID)
	})
	return items, nil
}
