package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	auditstore "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
)

const maxAuditPageSize = 200

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// List returns a page of audit events, newest first. Staff only.
// GET /api/audit?limit=&offset=&type=&user_id=
func (ac *AuditController) List(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", auditstore.DefaultPageSize)
	if !ok {
		return
	}
	if limit == 0 {
		limit = auditstore.DefaultPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}

	filter := auditstore.Filter{
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		filter.UserID = uint(userID)
	}

	events, total, err := ac.auditService.Events(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
