package workflow

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// fakeGateway answers in a random order by sleeping a random short time per call.
type fakeGateway struct {
	mu        sync.Mutex
	rng       *rand.Rand
	nextID    uint
	booklists []entities.Booklist
	items     []entities.BooklistItemView

	failCreate map[string]bool
	failItem   map[uint]bool
}

func newFakeGateway(seed int64) *fakeGateway {
	return &fakeGateway{rng: rand.New(rand.NewSource(seed))}
}

func (g *fakeGateway) jitter() {
	g.mu.Lock()
	d := time.Duration(g.rng.Intn(2000)) * time.Microsecond
	g.mu.Unlock()
	time.Sleep(d)
}

func (g *fakeGateway) CreateBooklist(_ context.Context, _ string, class string) (*entities.Booklist, error) {
	g.jitter()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failCreate[class] {
		return nil, errors.New("boom")
	}
	g.nextID++
	bl := entities.Booklist{ID: g.nextID, Class: class, Session: time.Now().Year()}
	g.booklists = append(g.booklists, bl)
	return &bl, nil
}

func (g *fakeGateway) AddBooklistItem(_ context.Context, req ItemRequest) (*entities.BooklistItemView, error) {
	g.jitter()
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failItem[req.BookNameID] {
		return nil, errors.New("boom")
	}

	var class string
	for _, bl := range g.booklists {
		if bl.ID == req.BooklistID {
			class = bl.Class
		}
	}
	if class == "" || class != req.Class {
		return nil, errors.New("booklist/class mismatch")
	}

	g.nextID++
	item := entities.BooklistItemView{ID: g.nextID, BookID: req.BookNameID, BooklistID: req.BooklistID, Class: class}
	g.items = append(g.items, item)
	return &item, nil
}

type fakeCatalog struct {
	mu          sync.Mutex
	subjects    []entities.Subject
	pubs        []entities.Publication
	books       []entities.BookName
	prices      map[uint]map[string]float64
	pricesErr   error
	items       []entities.BooklistItemView
	bookFilters []BookFilter
}

func newFakeCatalog() *fakeCatalog {
	s := baseState()
	return &fakeCatalog{
		subjects: s.Subjects,
		pubs:     s.Publications,
		books:    s.Books,
		prices: map[uint]map[string]float64{
			mathsMagic.ID: {"3": 120, "5": 150},
		},
	}
}

func (c *fakeCatalog) Subjects(context.Context) ([]entities.Subject, error) {
	return c.subjects, nil
}

func (c *fakeCatalog) Publications(context.Context) ([]entities.Publication, error) {
	return c.pubs, nil
}

func (c *fakeCatalog) BookNames(_ context.Context, f BookFilter) ([]entities.BookName, error) {
	c.mu.Lock()
	c.bookFilters = append(c.bookFilters, f)
	c.mu.Unlock()

	out := []entities.BookName{}
	for _, b := range c.books {
		if f.SubjectID != 0 && b.SubjectID != f.SubjectID {
			continue
		}
		if f.PublicationID != 0 && b.CompanyID != f.PublicationID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (c *fakeCatalog) Prices(_ context.Context, id uint) (map[string]float64, error) {
	if c.pricesErr != nil {
		return nil, c.pricesErr
	}
	p, ok := c.prices[id]
	if !ok {
		return nil, ErrNoPrices
	}
	return p, nil
}

func (c *fakeCatalog) BooklistItems(context.Context, string, int) ([]entities.BooklistItemView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items, nil
}
