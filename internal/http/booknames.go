package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type BookNamesController struct {
	store BookNameStore
	audit *audit.Service
}

// NewBookNamesController creates a controller over store. auditService may be nil.
func NewBookNamesController(store BookNameStore, auditService *audit.Service) *BookNamesController {
	return &BookNamesController{store: store, audit: auditService}
}

type bookNameRequest struct {
	ID         uint   `json:"id" form:"id"`
	BookNameID string `json:"book_name_id" form:"book_name_id" binding:"required"`
	Name       string `json:"name" form:"name" binding:"required"`
	SubjectID  uint   `json:"subject_id" form:"subject_id" binding:"required"`
	CompanyID  uint   `json:"company_id" form:"company_id" binding:"required"`
}

func (r bookNameRequest) entity() *entities.BookName {
	return &entities.BookName{
		ID:         r.ID,
		BookNameID: r.BookNameID,
		Name:       r.Name,
		SubjectID:  r.SubjectID,
		CompanyID:  r.CompanyID,
	}
}

const bookNameFieldsRequired = "All fields are required"

// ListBookNames returns the catalog joined with subject and publication names,
// optionally filtered by subject_id and company_id
// GET /api/booknames
func (bc *BookNamesController) ListBookNames(c *gin.Context) {
	subjectID, ok := parseOptionalQueryID(c, "subject_id")
	if !ok {
		return
	}
	companyID, ok := parseOptionalQueryID(c, "company_id")
	if !ok {
		return
	}

	names, err := bc.store.List(booknames.Filter{SubjectID: subjectID, CompanyID: companyID})
	if err != nil {
		respondInternalError(c, err, "list book names")
		return
	}
	c.JSON(http.StatusOK, names)
}

// CreateBookName adds a title with a unique book_name_id
// POST /api/booknames
func (bc *BookNamesController) CreateBookName(c *gin.Context) {
	var req bookNameRequest
	if !bindJSON(c, &req, bookNameFieldsRequired) {
		return
	}
	saved, err := bc.create(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "create book name")
		return
	}
	respondCreated(c, saved)
}

// UpdateBookName replaces the fields of a title
// PUT /api/booknames
func (bc *BookNamesController) UpdateBookName(c *gin.Context) {
	var req bookNameRequest
	if !bindJSON(c, &req, bookNameFieldsRequired) {
		return
	}
	saved, err := bc.update(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "update book name")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteBookName removes a title; its book entries are left in place
// DELETE /api/booknames
func (bc *BookNamesController) DeleteBookName(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req, "Book ID is required") {
		return
	}
	if err := bc.delete(req.ID, requestID(c)); err != nil {
		respondOpError(c, err, "delete book name")
		return
	}
	respondDeleted(c)
}

func (bc *BookNamesController) checkUnique(code string, excludeID uint) error {
	exists, err := bc.store.ExistsBookNameID(code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return badRequestError("Book ID already exists")
	}
	return nil
}

func (bc *BookNamesController) create(req bookNameRequest, rid string) (*entities.BookName, error) {
	if err := bc.checkUnique(req.BookNameID, 0); err != nil {
		return nil, err
	}
	name := req.entity()
	name.ID = 0
	if err := bc.store.Create(name); err != nil {
		return nil, err
	}
	saved, err := bc.store.GetByID(name.ID)
	if err != nil {
		return nil, err
	}
	bc.audit.LogCreate("bookname", saved.ID, saved.BookNameID, rid)
	return saved, nil
}

func (bc *BookNamesController) update(req bookNameRequest, rid string) (*entities.BookName, error) {
	if req.ID == 0 {
		return nil, badRequestError(bookNameFieldsRequired)
	}
	if err := bc.checkUnique(req.BookNameID, req.ID); err != nil {
		return nil, err
	}
	if err := bc.store.Update(req.entity()); err != nil {
		return nil, lookupError(err, "Book")
	}
	saved, err := bc.store.GetByID(req.ID)
	if err != nil {
		return nil, lookupError(err, "Book")
	}
	bc.audit.LogUpdate("bookname", saved.ID, saved.BookNameID, rid)
	return saved, nil
}

func (bc *BookNamesController) delete(id uint, rid string) error {
	if err := bc.store.Delete(id); err != nil {
		return lookupError(err, "Book")
	}
	bc.audit.LogDelete("bookname", id, "", rid)
	return nil
}
