package http

import (
	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Books     BookStore
	Relations RelationStore
	Audit     *audit.Service

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte // required when AuthConfig.CSRFEnabled

	// Per-client request throttling
	RateLimit config.RateLimit

	// Application info
	Version string
}
