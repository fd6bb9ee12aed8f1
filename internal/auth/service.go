package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

const defaultMaxLoginAttempts = 5

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
)

// UserStore is the user persistence the service needs; users.Repository implements it.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uint) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error)
	SetTokenHash(ctx context.Context, id uint, tokenHash string, createdAt *time.Time) error
	RecordLogin(ctx context.Context, id uint, at time.Time) error
	RecordFailedLogin(ctx context.Context, id uint, failedCount int, lockedUntil *time.Time) error
	Count(ctx context.Context) (int64, error)
}

var _ UserStore = (*users.Repository)(nil)

// Service handles authentication and user management.
type Service struct {
	users  UserStore
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  store,
		config: cfg,
	}
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(ctx context.Context, username, password string, isStaff bool) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
// Accounts are locked for LockoutDuration after MaxLoginAttempts failures.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(ctx, user)
		return nil, err
	}

	now := time.Now()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

// recordFailedLogin increments the failed login counter and locks the account if threshold reached.
func (s *Service) recordFailedLogin(ctx context.Context, user *entities.User) {
	if user.LockedUntil != nil {
		// The previous lockout has expired; start counting again.
		user.FailedLoginCount = 0
	}
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxLoginAttempts
	}

	var lockedUntil *time.Time
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		until := time.Now().Add(lockoutDuration)
		lockedUntil = &until
	}

	// Best effort: the caller already reports the failed login.
	_ = s.users.RecordFailedLogin(ctx, user.ID, user.FailedLoginCount, lockedUntil)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ValidateToken checks a plaintext token and returns the associated user.
// Returns ErrTokenExpired if the token is past its expiry time.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil {
		if time.Since(*user.TokenCreatedAt) > s.config.TokenExpiry {
			return nil, ErrTokenExpired
		}
	}

	return user, nil
}

// GenerateToken creates a new API token for a user, replacing any previous one.
// Returns the plaintext token (show to user once) - only the hash is stored in DB.
func (s *Service) GenerateToken(ctx context.Context, userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	if err := s.users.SetTokenHash(ctx, userID, hash, &now); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to save token: %w", err)
	}

	return plaintext, nil
}

// RevokeToken removes a user's API token.
func (s *Service) RevokeToken(ctx context.Context, userID uint) error {
	if err := s.users.SetTokenHash(ctx, userID, "", nil); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
