package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database"
)

const (
	healthStatusOK       = "healthy"
	healthStatusDegraded = "unhealthy"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports liveness (/ping) and dependency health (/health).
type HealthController struct {
	checks  map[string]func() error
	version string
}

// NewHealthController checks db on every /health call. A nil db is
// reported as "not configured" and does not make the service unhealthy.
func NewHealthController(db *database.Database, version string) *HealthController {
	h := &HealthController{checks: make(map[string]func() error), version: version}
	if db != nil {
		h.checks["database"] = db.Ping
	} else {
		h.checks["database"] = nil
	}
	return h
}

// Status runs every check and answers 503 if any of them fails.
// GET /health
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  healthStatusOK,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  make(map[string]string, len(h.checks)),
	}

	for name, check := range h.checks {
		if check == nil {
			resp.Checks[name] = "not configured"
			continue
		}
		if err := check(); err != nil {
			resp.Checks[name] = "error: " + err.Error()
			resp.Status = healthStatusDegraded
			continue
		}
		resp.Checks[name] = "ok"
	}

	code := http.StatusOK
	if resp.Status != healthStatusOK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Ping answers without touching any dependency.
// GET /ping
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
