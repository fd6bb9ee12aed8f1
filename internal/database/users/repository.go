// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByTokenHash(ctx, auth.HashToken(token))
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByTokenHash retrieves the user owning a hashed API token.
func (r *Repository) GetByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "token_hash = ?", tokenHash)
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetTokenHash stores (or, with an empty hash, clears) the user's API token.
func (r *Repository) SetTokenHash(ctx context.Context, id uint, tokenHash string, createdAt *time.Time) error {
	updates := map[string]any{"token_hash": tokenHash, "token_created_at": nil}
	if createdAt != nil {
		updates["token_created_at"] = *createdAt
	}
	return r.update(ctx, id, updates)
}

// RecordLogin marks a successful login and clears any lockout state.
func (r *Repository) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
}

// RecordFailedLogin stores the failed-attempt counter and optional lockout end.
func (r *Repository) RecordFailedLogin(ctx context.Context, id uint, failedCount int, lockedUntil *time.Time) error {
	updates := map[string]any{"failed_login_count": failedCount}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return r.update(ctx, id, updates)
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash})
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) update(ctx context.Context, id uint, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
