package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/users"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime:  time.Hour,
		BcryptCost:       4, // Low cost for faster tests
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupService(t *testing.T, cfg config.Auth) (*Service, *database.Database) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(users.NewRepository(db.DB), cfg), db
}
