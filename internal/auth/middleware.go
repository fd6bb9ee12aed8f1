package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logger"
	"github.com/mrlokans/bookstore/internal/permissions"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyIsStaff  = "auth_is_staff"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware resolves the caller of every request. It never rejects
// anonymous requests; routes that need a user add RequireAuth.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware. sessionManager may be nil.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths: map[string]bool{
			"/health":  true,
			"/ping":    true,
			"/metrics": true,
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
// A Bearer token that does not validate is rejected with 401 on every
// non-operational path; a missing or stale session just leaves the request anonymous.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		if token, ok := BearerToken(c.Request); ok {
			user, err := m.service.ValidateToken(c.Request.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrTokenExpired) {
					logger.For(c.Request.Context()).WithError(err).Error("Token validation failed")
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// trySessionAuth attempts to authenticate using session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}

	return user
}

// setUserContext stores user information in the Gin context.
func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyIsStaff, user.IsStaff)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": permissions.ErrUnauthenticated.Error(),
			})
			return
		}
		c.Next()
	}
}

// RequireStaff rejects anonymous requests with 401 and non-staff with 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permissions.CheckStaff(GetCaller(c)); err != nil {
			status := http.StatusForbidden
			if errors.Is(err, permissions.ErrUnauthenticated) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ContextKeyUserID)
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// IsStaff reports whether the authenticated user is staff.
func IsStaff(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsStaff)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// GetCaller returns the request's identity for permission checks.
func GetCaller(c *gin.Context) permissions.Caller {
	return permissions.Caller{UserID: GetUserID(c), IsStaff: IsStaff(c)}
}
