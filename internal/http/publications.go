package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type PublicationsController struct {
	store PublicationStore
	audit *audit.Service
}

// NewPublicationsController creates a controller over store. auditService may be nil.
func NewPublicationsController(store PublicationStore, auditService *audit.Service) *PublicationsController {
	return &PublicationsController{store: store, audit: auditService}
}

type publicationRequest struct {
	ID    uint   `json:"id" form:"id"`
	PubID string `json:"pubid" form:"pubid" binding:"required"`
	Name  string `json:"name" form:"name" binding:"required"`
	City  string `json:"city" form:"city" binding:"required"`
}

func (r publicationRequest) entity() *entities.Publication {
	return &entities.Publication{ID: r.ID, PubID: r.PubID, Name: r.Name, City: r.City}
}

const (
	publicationCreateRequired = "Publication ID, name, and city are required"
	publicationUpdateRequired = "All fields are required"
)

// ListPublications returns all publications, newest first
// GET /api/publications
func (pc *PublicationsController) ListPublications(c *gin.Context) {
	pubs, err := pc.store.List()
	if err != nil {
		respondInternalError(c, err, "list publications")
		return
	}
	c.JSON(http.StatusOK, pubs)
}

// CreatePublication creates a publication with a unique pubid
// POST /api/publications
func (pc *PublicationsController) CreatePublication(c *gin.Context) {
	var req publicationRequest
	if !bindJSON(c, &req, publicationCreateRequired) {
		return
	}
	pub, err := pc.create(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "create publication")
		return
	}
	respondCreated(c, pub)
}

// UpdatePublication replaces the fields of a publication
// PUT /api/publications
func (pc *PublicationsController) UpdatePublication(c *gin.Context) {
	var req publicationRequest
	if !bindJSON(c, &req, publicationUpdateRequired) {
		return
	}
	pub, err := pc.update(req, requestID(c))
	if err != nil {
		respondOpError(c, err, "update publication")
		return
	}
	c.JSON(http.StatusOK, pub)
}

// DeletePublication removes a publication
// DELETE /api/publications
func (pc *PublicationsController) DeletePublication(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req, "Publication ID is required") {
		return
	}
	if err := pc.delete(req.ID, requestID(c)); err != nil {
		respondOpError(c, err, "delete publication")
		return
	}
	respondDeleted(c)
}

func (pc *PublicationsController) checkUnique(pubID string, excludeID uint) error {
	exists, err := pc.store.ExistsPubID(pubID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return badRequestError("Publication ID already exists")
	}
	return nil
}

func (pc *PublicationsController) create(req publicationRequest, rid string) (*entities.Publication, error) {
	if err := pc.checkUnique(req.PubID, 0); err != nil {
		return nil, err
	}
	pub := req.entity()
	pub.ID = 0
	if err := pc.store.Create(pub); err != nil {
		return nil, err
	}
	pc.audit.LogCreate("publication", pub.ID, pub.PubID, rid)
	return pub, nil
}

func (pc *PublicationsController) update(req publicationRequest, rid string) (*entities.Publication, error) {
	if req.ID == 0 {
		return nil, badRequestError(publicationUpdateRequired)
	}
	if err := pc.checkUnique(req.PubID, req.ID); err != nil {
		return nil, err
	}
	if err := pc.store.Update(req.entity()); err != nil {
		return nil, lookupError(err, "Publication")
	}
	pub, err := pc.store.GetByID(req.ID)
	if err != nil {
		return nil, lookupError(err, "Publication")
	}
	pc.audit.LogUpdate("publication", pub.ID, pub.PubID, rid)
	return pub, nil
}

func (pc *PublicationsController) delete(id uint, rid string) error {
	if err := pc.store.Delete(id); err != nil {
		return lookupError(err, "Publication")
	}
	pc.audit.LogDelete("publication", id, "", rid)
	return nil
}
