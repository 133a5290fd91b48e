package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type SchoolsController struct {
	store SchoolStore
	audit *audit.Service
}

// NewSchoolsController creates a controller over store. auditService may be nil.
func NewSchoolsController(store SchoolStore, auditService *audit.Service) *SchoolsController {
	return &SchoolsController{store: store, audit: auditService}
}

type schoolRequest struct {
	ID       uint   `json:"id" form:"id"`
	SchoolID string `json:"school_id" form:"school_id" binding:"required"`
	Name     string `json:"name" form:"name" binding:"required"`
	City     string `json:"city" form:"city" binding:"required"`
	Contact  string `json:"contact" form:"contact" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required"`
}

func (r schoolRequest) entity() *entities.School {
	return &entities.School{
		ID:       r.ID,
		SchoolID: r.SchoolID,
		Name:     r.Name,
		City:     r.City,
		Contact:  r.Contact,
		Email:    r.Email,
	}
}

const schoolFieldsRequired = "All fields are required"

// ListSchools returns all schools, newest first
// GET /api/schools
func (sc *SchoolsController) ListSchools(c *gin.Context) {
	schools, err := sc.store.List()
	if err != nil {
		respondInternalError(c, err, "list schools")
		return
	}
	c.JSON(http.StatusOK, schools)
}

// CreateSchool creates a school with a unique school_id
// POST /api/schools
func (sc *SchoolsController) CreateSchool(c *gin.Context) {
	var req schoolRequest
	if !bindJSON(c, &req, schoolFieldsRequired) {
		return
	}
	school, err := sc.create(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "create school")
		return
	}
	respondCreated(c, school)
}

// UpdateSchool replaces the fields of a school
// PUT /api/schools
func (sc *SchoolsController) UpdateSchool(c *gin.Context) {
	var req schoolRequest
	if !bindJSON(c, &req, schoolFieldsRequired) {
		return
	}
	school, err := sc.update(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "update school")
		return
	}
	c.JSON(http.StatusOK, school)
}

// DeleteSchool removes a school; its booklists are left in place
// DELETE /api/schools
func (sc *SchoolsController) DeleteSchool(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req, "School ID is required") {
		return
	}
	if err := sc.delete(req.ID, requestID(c)); err != nil {
		respondOpError(c, err, "delete school")
		return
	}
	respondDeleted(c)
}

func (sc *SchoolsController) checkUnique(code string, excludeID uint) error {
	exists, err := sc.store.ExistsSchoolID(code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return badRequestError("School ID already exists")
	}
	return nil
}

func (sc *SchoolsController) create(req schoolRequest, rid string) (*entities.School, error) {
	if err := sc.checkUnique(req.SchoolID, 0); err != nil {
		return nil, err
	}
	school := req.entity()
	school.ID = 0
	if err := sc.store.Create(school); err != nil {
		return nil, err
	}
	sc.audit.LogCreate("school", school.ID, school.SchoolID, rid)
	return school, nil
}

func (sc *SchoolsController) update(req schoolRequest, rid string) (*entities.School, error) {
	if req.ID == 0 {
		return nil, badRequestError(schoolFieldsRequired)
	}
	if err := sc.checkUnique(req.SchoolID, req.ID); err != nil {
		return nil, err
	}
	if err := sc.store.Update(req.entity()); err != nil {
		return nil, lookupError(err, "School")
	}
	school, err := sc.store.GetByID(req.ID)
	if err != nil {
		return nil, lookupError(err, "School")
	}
	sc.audit.LogUpdate("school", school.ID, school.SchoolID, rid)
	return school, nil
}

func (sc *SchoolsController) delete(id uint, rid string) error {
	if err := sc.store.Delete(id); err != nil {
		return lookupError(err, "School")
	}
	sc.audit.LogDelete("school", id, "", rid)
	return nil
}
