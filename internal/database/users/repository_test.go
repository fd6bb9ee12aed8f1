package users

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func createUser(t *testing.T, repo *Repository, username string) *entities.User {
	t.Helper()
	user := &entities.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestRepository_Create(t *testing.T) {
	repo := setupTestDB(t)

	user := createUser(t, repo, "testuser")
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsStaff)

	err := repo.Create(context.Background(), &entities.User{Username: "testuser"})
	assert.Error(t, err, "duplicate username must fail")
}

func TestRepository_Lookups(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	created := createUser(t, repo, "testuser")

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)

	byName, err := repo.GetByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_TokenHash(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "testuser")
	createUser(t, repo, "other")

	now := time.Now()
	require.NoError(t, repo.SetTokenHash(ctx, user.ID, "abc123", &now))

	found, err := repo.GetByTokenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	require.NotNil(t, found.TokenCreatedAt)

	t.Run("empty hash never matches", func(t *testing.T) {
		_, err := repo.GetByTokenHash(ctx, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("clear token", func(t *testing.T) {
		require.NoError(t, repo.SetTokenHash(ctx, user.ID, "", nil))
		_, err := repo.GetByTokenHash(ctx, "abc123")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.ErrorIs(t, repo.SetTokenHash(ctx, 9999, "x", nil), ErrNotFound)
}

func TestRepository_LoginTracking(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	user := createUser(t, repo, "testuser")

	lockedUntil := time.Now().Add(time.Hour)
	require.NoError(t, repo.RecordFailedLogin(ctx, user.ID, 5, &lockedUntil))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedLoginCount)
	require.NotNil(t, stored.LockedUntil)

	require.NoError(t, repo.RecordLogin(ctx, user.ID, time.Now()))

	stored, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRepository_Count(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	createUser(t, repo, "a_user")
	createUser(t, repo, "b_user")

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
