package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type BooksController struct {
	store  BookEntryStore
	titles BookNameGetter
	audit  *audit.Service
}

func NewBooksController(store BookEntryStore, titles BookNameGetter, auditService *audit.Service) *BooksController {
	return &BooksController{store: store, titles: titles, audit: auditService}
}

type bookEntryInput struct {
	Class    string   `json:"class" binding:"required,classlabel"`
	Price    *float64 `json:"price" binding:"omitempty,min=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,min=0"`
}

func (e bookEntryInput) empty() bool {
	return (e.Price == nil || *e.Price == 0) && (e.Quantity == nil || *e.Quantity == 0)
}

type createBooksRequest struct {
	BookNameID uint             `json:"book_name_id" binding:"required"`
	Entries    []bookEntryInput `json:"entries" binding:"required,min=1,dive"`
}

// bookFormRequest is the single-class add form on the books page.
type bookFormRequest struct {
	BookNameID uint     `form:"book_name_id" binding:"required"`
	Class      string   `form:"class" binding:"required,classlabel"`
	Price      *float64 `form:"price" binding:"omitempty,min=0"`
	Quantity   *int     `form:"quantity" binding:"omitempty,min=0"`
}

// createRequest treats zero as unset, since blank inputs bind as zero.
func (r bookFormRequest) createRequest() createBooksRequest {
	return createBooksRequest{
		BookNameID: r.BookNameID,
		Entries:    []bookEntryInput{{Class: r.Class, Price: nonZero(r.Price), Quantity: nonZero(r.Quantity)}},
	}
}

func nonZero[T comparable](p *T) *T {
	var zero T
	if p == nil || *p == zero {
		return nil
	}
	return p
}

type updateBookRequest struct {
	ID       uint    `json:"id" form:"id" binding:"required"`
	Class    string  `json:"class" form:"class" binding:"required,classlabel"`
	Price    float64 `json:"price" form:"price" binding:"min=0"`
	Quantity int     `json:"quantity" form:"quantity" binding:"min=0"`
}

// PricesResponse maps class label to price.
type PricesResponse struct {
	Prices map[string]float64 `json:"prices"`
}

// ListBooks returns every book entry joined with its title, subject and publication
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	entries, err := bc.store.List()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateBooks adds per-class entries for one title. Rows without a price or
// a quantity are skipped.
// POST /api/books
func (bc *BooksController) CreateBooks(c *gin.Context) {
	var req createBooksRequest
	if !bindJSON(c, &req, "Book and at least one class entry are required") {
		return
	}
	created, err := bc.create(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "create books")
		return
	}
	respondCreated(c, created)
}

// UpdateBook changes the class, price and quantity of one entry
// PUT /api/books
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var req updateBookRequest
	if !bindJSON(c, &req, "All fields are required") {
		return
	}
	entry, err := bc.update(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteBook removes one entry
// DELETE /api/books
func (bc *BooksController) DeleteBook(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req, "Book ID is required") {
		return
	}
	if err := bc.delete(req.ID, requestID(c)); err != nil {
		respondOpError(c, err, "delete book")
		return
	}
	respondDeleted(c)
}

func (bc *BooksController) create(req createBooksRequest, rid string) ([]entities.BookEntry, error) {
	seen := make(map[string]bool, len(req.Entries))
	var entries []entities.BookEntry
	for _, in := range req.Entries {
		if seen[in.Class] {
			return nil, badRequestError("Duplicate class " + in.Class)
		}
		seen[in.Class] = true
		if in.empty() {
			continue
		}
		entry := entities.BookEntry{Class: in.Class}
		if in.Price != nil {
			entry.Price = *in.Price
		}
		if in.Quantity != nil {
			entry.Quantity = *in.Quantity
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, badRequestError("At least one class needs a price or quantity")
	}

	title, err := bc.titles.GetByID(req.BookNameID)
	if err != nil {
		return nil, lookupError(err, "Book")
	}
	created, err := bc.store.CreateEntries(title.ID, entries)
	if err != nil {
		return nil, err
	}
	for _, e := range created {
		bc.audit.LogCreate("book", e.ID, title.BookNameID+"/"+e.Class, rid)
	}
	return created, nil
}

func (bc *BooksController) update(req updateBookRequest, rid string) (*entities.BookEntry, error) {
	err := bc.store.Update(&entities.BookEntry{ID: req.ID, Class: req.Class, Price: req.Price, Quantity: req.Quantity})
	if err != nil {
		return nil, lookupError(err, "Book")
	}
	entry, err := bc.store.GetByID(req.ID)
	if err != nil {
		return nil, lookupError(err, "Book")
	}
	bc.audit.LogUpdate("book", entry.ID, entry.BookName+"/"+entry.Class, rid)
	return entry, nil
}

func (bc *BooksController) delete(id uint, rid string) error {
	if err := bc.store.Delete(id); err != nil {
		return lookupError(err, "Book")
	}
	bc.audit.LogDelete("book", id, "", rid)
	return nil
}

// GetPrices returns the price of a title for every class it has an entry in
// GET /api/books/price?id=<booknames.id>
func (bc *BooksController) GetPrices(c *gin.Context) {
	if c.Query("id") == "" {
		respondBadRequest(c, "Book id is required")
		return
	}
	id, ok := parseQueryID(c, "id")
	if !ok {
		return
	}

	prices, err := bc.store.Prices(id)
	if err != nil {
		respondInternalError(c, err, "get book prices")
		return
	}
	if len(prices) == 0 {
		respondError(c, http.StatusNotFound, "No prices found for the given book")
		return
	}

	c.JSON(http.StatusOK, PricesResponse{Prices: prices})
}
