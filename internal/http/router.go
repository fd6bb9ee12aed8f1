package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/bookstore/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// The returned func stops the background goroutines of the limiters and
// must be called on shutdown.
func NewRouter(cfg RouterConfig) (*gin.Engine, func()) {
	var stops []func()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware())
	router.Use(MetricsMiddleware())

	// HSTS only makes sense where cookies are HTTPS-only too
	router.Use(auth.SecurityHeadersMiddleware(cfg.AuthConfig.SecureCookies))

	if cfg.RateLimit.RPS > 0 {
		limiter := NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		stops = append(stops, limiter.Stop)
		router.Use(limiter.Middleware())
	}

	// CSRF must run before session so that session context is preserved
	csrfEnabled := cfg.AuthConfig.CSRFEnabled && len(cfg.CSRFSecret) > 0
	if csrfEnabled {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	router.Use(auth.NewMiddleware(cfg.AuthService, cfg.SessionManager).Handler())

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	// Authentication endpoints
	authGroup := api.Group("/auth")
	if cfg.SessionManager != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.Audit, cfg.AuthConfig)
		stops = append(stops, authController.Stop)
		authController.RegisterRoutes(authGroup, csrfEnabled)
	}
	auth.NewAPITokenController(cfg.AuthService, cfg.Audit).RegisterRoutes(authGroup)

	// Books API endpoints
	booksController := NewBooksController(cfg.Books, cfg.Audit)
	api.GET("/books", booksController.List)
	api.POST("/books", booksController.Create)
	api.GET("/books/:id", booksController.Get)
	api.PUT("/books/:id", booksController.Update)
	api.PATCH("/books/:id", booksController.Patch)
	api.DELETE("/books/:id", booksController.Delete)

	// Relation endpoints
	relationsController := NewRelationsController(cfg.Relations, cfg.Books, cfg.Audit)
	api.GET("/relations/rates", relationsController.Rates)
	relationsGroup := api.Group("/relations", auth.RequireAuth())
	relationsGroup.GET("", relationsController.List)
	relationsGroup.GET("/:book_id", relationsController.Get)
	relationsGroup.PATCH("/:book_id", relationsController.Update)

	// Audit log (staff only)
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auth.RequireStaff(), auditController.List)
	}

	return router, func() {
		for _, stop := range stops {
			stop()
		}
	}
}
