package auth

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logger"
	"github.com/mrlokans/bookstore/internal/metrics"
	"github.com/mrlokans/bookstore/internal/serializers"
	"github.com/mrlokans/bookstore/internal/validation"
)

const (
	loginResultSuccess = "success"
	loginResultFailed  = "failed"
	loginResultLocked  = "locked"
	loginResultLimited = "rate_limited"
	loginResultInvalid = "invalid"
)

type loginRequest struct {
	Username string `json:"username" validate:"notblank,max=64"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	IsStaff  bool     `json:"is_staff"`
	AuthType AuthType `json:"auth_type,omitempty"`
}

// NewUserResponse converts a user to its public view.
func NewUserResponse(user *entities.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, IsStaff: user.IsStaff}
}

// AuditActor describes the caller of a request for the audit trail.
func AuditActor(c *gin.Context) audit.Actor {
	return audit.Actor{
		UserID:    GetUserID(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// AuthController handles the JSON login/logout/session endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	limiter        *LoginLimiter
	audit          *audit.Service
}

// NewAuthController creates a new authentication controller with its own login limiter.
func NewAuthController(service *Service, sessionManager *SessionManager, auditService *audit.Service, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		audit:          auditService,
		limiter: NewLoginLimiter(LoginLimiterConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes under the given group.
// The CSRF token endpoint is only registered when protection is on.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup, csrfEnabled bool) {
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", RequireAuth(), ac.Me)
	if csrfEnabled {
		group.GET("/csrf", ac.CSRFToken)
	}
}

// Stop cleans up resources (login limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.limiter != nil {
		ac.limiter.Stop()
	}
}

// Login checks JSON credentials and starts a cookie session.
func (ac *AuthController) Login(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.For(ctx)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResultInvalid).Inc()
		writeValidationError(c, serializers.DecodeError(err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResultInvalid).Inc()
		writeValidationError(c, err)
		return
	}

	clientIP := c.ClientIP()
	actor := AuditActor(c)

	if allowed, retryAfter := ac.limiter.Allow(clientIP, req.Username); !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues(loginResultLimited).Inc()
		ac.audit.LogAuth(ctx, actor, "login", false, "rate limited: "+req.Username)
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.Round(time.Second).String(),
		})
		return
	}

	user, err := ac.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountLocked):
			metrics.LoginAttemptsTotal.WithLabelValues(loginResultLocked).Inc()
			ac.audit.LogAuth(ctx, actor, "login", false, "account locked: "+req.Username)
			c.JSON(http.StatusForbidden, gin.H{"error": ErrAccountLocked.Error()})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			ac.limiter.RecordFailure(clientIP, req.Username)
			metrics.LoginAttemptsTotal.WithLabelValues(loginResultFailed).Inc()
			ac.audit.LogAuth(ctx, actor, "login", false, "invalid credentials: "+req.Username)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		default:
			log.WithError(err).Error("Login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	ac.limiter.RecordSuccess(clientIP, req.Username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.WithError(err).Error("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues(loginResultSuccess).Inc()
	actor.UserID = user.ID
	ac.audit.LogAuth(ctx, actor, "login", true, "")
	log.WithField("user_id", user.ID).Info("User logged in")

	resp := NewUserResponse(user)
	resp.AuthType = AuthTypeSession
	c.JSON(http.StatusOK, resp)
}

// Logout destroys the session. It succeeds for anonymous callers too.
func (ac *AuthController) Logout(c *gin.Context) {
	if GetAuthType(c) == AuthTypeSession {
		ac.audit.LogAuth(c.Request.Context(), AuditActor(c), "logout", true, "")
	}
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		logger.For(c.Request.Context()).WithError(err).Error("Failed to destroy session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated caller.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, UserResponse{
		ID:       GetUserID(c),
		Username: GetUsername(c),
		IsStaff:  IsStaff(c),
		AuthType: GetAuthType(c),
	})
}

// CSRFToken hands out the token clients must echo in the X-CSRF-Token header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"csrf_token": GetCSRFToken(c),
		"header":     CSRFTokenHeader,
	})
}

// APITokenController handles API token management endpoints.
type APITokenController struct {
	service *Service
	audit   *audit.Service
}

// NewAPITokenController creates a new API token controller.
func NewAPITokenController(service *Service, auditService *audit.Service) *APITokenController {
	return &APITokenController{service: service, audit: auditService}
}

// RegisterRoutes registers token routes under the given group.
func (tc *APITokenController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/token", RequireAuth(), tc.GenerateToken)
	group.DELETE("/token", RequireAuth(), tc.RevokeToken)
}

// GenerateToken creates a new API token for the authenticated user.
// The previous token, if any, stops working.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	ctx := c.Request.Context()
	token, err := tc.service.GenerateToken(ctx, GetUserID(c))
	if err != nil {
		logger.For(ctx).WithError(err).Error("Failed to generate API token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	tc.audit.LogAuth(ctx, AuditActor(c), "token_create", true, "")
	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	ctx := c.Request.Context()
	if err := tc.service.RevokeToken(ctx, GetUserID(c)); err != nil {
		logger.For(ctx).WithError(err).Error("Failed to revoke API token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	tc.audit.LogAuth(ctx, AuditActor(c), "token_revoke", true, "")
	c.Status(http.StatusNoContent)
}

func writeValidationError(c *gin.Context, err error) {
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		vErr = validation.NewError("non_field_errors", err.Error())
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": vErr.Fields})
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
