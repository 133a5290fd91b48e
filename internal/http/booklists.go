package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/metrics"
)

const commitModeTransactional = "transactional"

type BooklistsController struct {
	store   BooklistStore
	audit   *audit.Service
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewBooklistsController(store BooklistStore, auditService *audit.Service, m *metrics.Metrics) *BooklistsController {
	return &BooklistsController{store: store, audit: auditService, metrics: m, now: time.Now}
}

type createBooklistRequest struct {
	SchoolID string `json:"schoolId" binding:"required"`
	Class    string `json:"class" binding:"required,classlabel"`
}

type deleteBooklistRequest struct {
	SchoolID   string `json:"schoolId" binding:"required"`
	BooklistID uint   `json:"booklistId" binding:"required"`
}

type addItemRequest struct {
	SchoolID   string `json:"schoolId" binding:"required"`
	BooklistID uint   `json:"booklistId" binding:"required"`
	BookID     uint   `json:"book_id" binding:"required"`
	Class      string `json:"_class" binding:"classlabel"`
}

type commitClassRequest struct {
	Class   string `json:"class" binding:"required,classlabel"`
	BookIDs []uint `json:"book_ids" binding:"required,min=1"`
}

type commitRequest struct {
	SchoolID string               `json:"schoolId" binding:"required"`
	Session  int                  `json:"session" binding:"min=0"`
	Classes  []commitClassRequest `json:"classes" binding:"required,min=1,dive"`
}

// respondBooklistError maps the booklist repository's sentinel errors to
// 404/400 and anything else to 500.
func respondBooklistError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, booklists.ErrSchoolNotFound):
		respondNotFound(c, "School")
	case errors.Is(err, booklists.ErrBooklistNotFound):
		respondNotFound(c, "Booklist")
	case errors.Is(err, booklists.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "Book not found for the specified class and book name")
	case errors.Is(err, booklists.ErrClassMismatch), errors.Is(err, booklists.ErrInvalidClass):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

func (bc *BooklistsController) school(c *gin.Context, code string) (*entities.School, bool) {
	school, err := bc.store.FindSchool(code)
	if err != nil {
		respondBooklistError(c, err, "find school")
		return nil, false
	}
	return school, true
}

// GetOverview returns the sessions of a school and the booklists of the
// selected one.
// GET /api/booklist?schoolId=&session=
func (bc *BooklistsController) GetOverview(c *gin.Context) {
	code := c.Query("schoolId")
	if code == "" {
		respondBadRequest(c, "School ID is required")
		return
	}
	session, ok := parseOptionalQueryInt(c, "session")
	if !ok {
		return
	}

	school, ok := bc.school(c, code)
	if !ok {
		return
	}

	overview, err := bc.store.Overview(school.ID, session, bc.now().Year())
	if err != nil {
		respondInternalError(c, err, "booklist overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// CreateBooklist adds an empty booklist for the current year. Repeated calls
// for the same class create separate rows.
// POST /api/booklist
func (bc *BooklistsController) CreateBooklist(c *gin.Context) {
	var req createBooklistRequest
	if !bindJSON(c, &req, "School ID and class are required") {
		return
	}

	school, ok := bc.school(c, req.SchoolID)
	if !ok {
		return
	}

	list := &entities.Booklist{SchoolID: school.ID, Class: req.Class, Session: bc.now().Year()}
	if err := bc.store.Create(list); err != nil {
		respondInternalError(c, err, "create booklist")
		return
	}
	bc.audit.LogCreate("booklist", list.ID, school.SchoolID+"/"+list.Class, requestID(c))

	respondCreated(c, list)
}

// DeleteBooklist removes a booklist of a school together with its items
// DELETE /api/booklist
func (bc *BooklistsController) DeleteBooklist(c *gin.Context) {
	var req deleteBooklistRequest
	if !bindJSON(c, &req, "School ID and booklist ID are required") {
		return
	}
	bc.deleteBooklist(c, req.SchoolID, req.BooklistID)
}

func (bc *BooklistsController) deleteBooklist(c *gin.Context, code string, booklistID uint) {
	school, ok := bc.school(c, code)
	if !ok {
		return
	}

	if err := bc.store.Delete(school.ID, booklistID); err != nil {
		respondBooklistError(c, err, "delete booklist")
		return
	}
	bc.audit.LogDelete("booklist", booklistID, school.SchoolID, requestID(c))

	respondDeleted(c)
}

// GetItems returns the joined items of every booklist of a school session
// GET /api/booklist/items?schoolId=&session=
func (bc *BooklistsController) GetItems(c *gin.Context) {
	code := c.Query("schoolId")
	rawSession := c.Query("session")
	if code == "" || rawSession == "" {
		respondBadRequest(c, "School ID and session are required")
		return
	}
	session, err := strconv.Atoi(rawSession)
	if err != nil {
		respondBadRequest(c, "invalid session")
		return
	}

	school, ok := bc.school(c, code)
	if !ok {
		return
	}

	items, err := bc.store.Items(school.ID, session)
	if err != nil {
		respondInternalError(c, err, "list booklist items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddItem attaches the entry of a title for the booklist's class.
// POST /api/booklist/items
func (bc *BooklistsController) AddItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req, "School ID, booklist ID, and book ID are required") {
		return
	}

	school, ok := bc.school(c, req.SchoolID)
	if !ok {
		return
	}

	item, err := bc.store.AttachBook(school.ID, req.BooklistID, req.BookID, req.Class)
	if err != nil {
		respondBooklistError(c, err, "attach booklist item")
		return
	}
	bc.audit.LogCreate("booklist_item", item.ID, item.BookName+"/"+item.Class, requestID(c))

	respondCreated(c, item)
}

// Commit saves a multi-class build in one transaction, reusing the booklist
// of each (school, class, session) when one exists.
// POST /api/booklist/commit
func (bc *BooklistsController) Commit(c *gin.Context) {
	var req commitRequest
	if !bindJSON(c, &req, "School ID and at least one class are required") {
		return
	}

	session := req.Session
	if session == 0 {
		session = bc.now().Year()
	}

	plans := make([]booklists.ClassPlan, 0, len(req.Classes))
	for _, cl := range req.Classes {
		plans = append(plans, booklists.ClassPlan{Class: cl.Class, BookNameIDs: cl.BookIDs})
	}

	res, err := bc.store.Commit(req.SchoolID, session, plans)
	if err != nil {
		bc.metrics.ObserveCommit(commitModeTransactional, 0, 0, err)
		bc.audit.LogCommit(req.SchoolID, commitModeTransactional, 0, 0, requestID(c), err)
		respondBooklistError(c, err, "commit booklists")
		return
	}
	bc.metrics.ObserveCommit(commitModeTransactional, len(res.Booklists), len(res.Items), nil)
	bc.audit.LogCommit(req.SchoolID, commitModeTransactional, len(res.Booklists), len(res.Items), requestID(c), nil)

	respondCreated(c, res)
}

// ListSchoolBooklists returns every booklist of a school in class order
// GET /api/schools/:schoolId/booklist
func (bc *BooklistsController) ListSchoolBooklists(c *gin.Context) {
	school, ok := bc.school(c, c.Param("schoolId"))
	if !ok {
		return
	}

	lists, err := bc.store.ListBySchool(school.ID)
	if err != nil {
		respondInternalError(c, err, "list school booklists")
		return
	}
	c.JSON(http.StatusOK, lists)
}

// DeleteSchoolBooklist is DeleteBooklist with the ids in the path
// DELETE /api/schools/:schoolId/booklist/:booklistId
func (bc *BooklistsController) DeleteSchoolBooklist(c *gin.Context) {
	id, ok := parseIDParam(c, "booklistId")
	if !ok {
		return
	}
	bc.deleteBooklist(c, c.Param("schoolId"), id)
}
