package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type SubjectsController struct {
	store SubjectStore
	audit *audit.Service
}

// NewSubjectsController creates a controller over store. auditService may be nil.
func NewSubjectsController(store SubjectStore, auditService *audit.Service) *SubjectsController {
	return &SubjectsController{store: store, audit: auditService}
}

type subjectRequest struct {
	ID    uint   `json:"id" form:"id"`
	SubID string `json:"subid" form:"subid" binding:"required"`
	Name  string `json:"name" form:"name" binding:"required"`
}

const (
	subjectCreateRequired = "Subject ID and name are required"
	subjectUpdateRequired = "Subject ID, subid, and name are required"
)

// ListSubjects returns all subjects, newest first
// GET /api/subjects
func (sc *SubjectsController) ListSubjects(c *gin.Context) {
	subjects, err := sc.store.List()
	if err != nil {
		respondInternalError(c, err, "list subjects")
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// CreateSubject creates a subject. subid is not checked for uniqueness.
// POST /api/subjects
func (sc *SubjectsController) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if !bindJSON(c, &req, subjectCreateRequired) {
		return
	}
	subject, err := sc.create(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "create subject")
		return
	}
	respondCreated(c, subject)
}

// UpdateSubject replaces subid and name
// PUT /api/subjects
func (sc *SubjectsController) UpdateSubject(c *gin.Context) {
	var req subjectRequest
	if !bindJSON(c, &req, subjectUpdateRequired) {
		return
	}
	subject, err := sc.update(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "update subject")
		return
	}
	c.JSON(http.StatusOK, subject)
}

// DeleteSubject removes a subject
// DELETE /api/subjects
func (sc *SubjectsController) DeleteSubject(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req, "Subject ID is required") {
		return
	}
	if err := sc.delete(req.ID, requestID(c)); err != nil {
		respondOpError(c, err, "delete subject")
		return
	}
	respondDeleted(c)
}

func (sc *SubjectsController) create(req subjectRequest, rid string) (*entities.Subject, error) {
	subject := &entities.Subject{SubID: req.SubID, Name: req.Name}
	if err := sc.store.Create(subject); err != nil {
		return nil, err
	}
	sc.audit.LogCreate("subject", subject.ID, subject.SubID, rid)
	return subject, nil
}

func (sc *SubjectsController) update(req subjectRequest, rid string) (*entities.Subject, error) {
	if req.ID == 0 {
		return nil, badRequestError(subjectUpdateRequired)
	}
	if err := sc.store.Update(&entities.Subject{ID: req.ID, SubID: req.SubID, Name: req.Name}); err != nil {
		return nil, lookupError(err, "Subject")
	}
	subject, err := sc.store.GetByID(req.ID)
	if err != nil {
		return nil, lookupError(err, "Subject")
	}
	sc.audit.LogUpdate("subject", subject.ID, subject.SubID, rid)
	return subject, nil
}

func (sc *SubjectsController) delete(id uint, rid string) error {
	if err := sc.store.Delete(id); err != nil {
		return lookupError(err, "Subject")
	}
	sc.audit.LogDelete("subject", id, "", rid)
	return nil
}
