package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/datatable"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
)

type AuditReader interface {
	List(q entities.AuditQuery) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// GetAuditEvents lists audit events newest first.
// GET /api/audit?type=&entity=&school=&status=&page=&limit=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	page, _ := strconv.Atoi(c.Query("page"))
	page = max(page, 1)

	q := entities.AuditQuery{
		Type:       entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity"),
		School:     c.Query("school"),
		Status:     entities.AuditStatus(c.Query("status")),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	events, total, err := ac.events.List(q)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  max(datatable.TotalPages(int(total), limit), 1),
		"total_events": total,
	})
}
