package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/entities"
)

const maxAuditPageSize = 200

type AuditController struct {
	auditService *audit.Service
	log          *zap.Logger
}

func NewAuditController(auditService *audit.Service, log *zap.Logger) *AuditController {
	return &AuditController{
		auditService: auditService,
		log:          log,
	}
}

// ListEvents handles GET /api/audit?type=&limit=&offset=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > maxAuditPageSize {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), entities.AuditEventType(c.Query("type")), limit, offset)
	if err != nil {
		respondInternalError(c, ac.log, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":   events,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"has_more": int64(offset+len(events)) < total,
	})
}

// EntityHistory handles GET /api/audit/:entity/:id, e.g. /api/audit/loan/7
func (ac *AuditController) EntityHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entity := c.Param("entity")
	events, err := ac.auditService.History(c.Request.Context(), entity, id)
	if err != nil {
		respondInternalError(c, ac.log, err, "audit history")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_type": entity,
		"entity_id":   id,
		"events":      events,
	})
}
