package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/logger"
	"github.com/mrlokans/bookstore/internal/permissions"
	"github.com/mrlokans/bookstore/internal/serializers"
	"github.com/mrlokans/bookstore/internal/validation"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"` // field name -> message for validation errors
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// respondError maps a service or store error to its HTTP status.
// Unknown errors are logged and reported as a bare 500.
func respondError(c *gin.Context, err error, context string) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: vErr.Fields})
	case errors.Is(err, books.ErrNotFound), errors.Is(err, relations.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, relations.ErrNotFound):
		respondNotFound(c, "relation")
	case errors.Is(err, permissions.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, permissions.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		respondInternalError(c, err, context)
	}
}

// respondDecodeError reports a body that could not be bound to the request type.
func respondDecodeError(c *gin.Context, err error) {
	respondError(c, serializers.DecodeError(err), "decode")
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	logger.For(c.Request.Context()).WithError(err).WithField("op", context).Error("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Parameter Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// An ID that cannot name any row is reported as 404, like an unknown one.
func parseIDParam(c *gin.Context, paramName, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondNotFound(c, resource)
		return 0, false
	}
	return uint(id), true
}

// parseIntQuery reads a non-negative integer query parameter, falling back to def.
func parseIntQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
