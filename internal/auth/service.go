// Package auth implements user registration, credential checks, and JWT
// bearer tokens for the API.
package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/athenareader/athena/internal/config"
	"github.com/athenareader/athena/internal/database"
	"github.com/athenareader/athena/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrAuthRequired     = errors.New("authentication required")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles registration, authentication, and token issuance.
type Service struct {
	db      *database.Database
	config  config.Auth
	limiter *RateLimiter
}

// NewService creates an authentication service. When no token secret is
// configured a random one is generated, which invalidates outstanding
// tokens on restart.
func NewService(db *database.Database, cfg config.Auth) (*Service, error) {
	if cfg.TokenSecret == "" {
		secret, err := GenerateTokenSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		cfg.TokenSecret = secret
	}

	limiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &Service{db: db, config: cfg, limiter: limiter}, nil
}

// Close stops the service's background goroutines.
func (s *Service) Close() {
	s.limiter.Stop()
}

// Register validates and creates a new account.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}
	// RFC 5321 length limit
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	if _, err := s.db.GetUserByUsername(username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if _, err := s.db.GetUserByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials. The caller identifier (normally the
// client IP) feeds the login rate limiter; repeated failures lock the
// IP+username pair out for the configured duration.
func (s *Service) Authenticate(ip, username, password string) (*entities.User, error) {
	if allowed, retryAfter := s.limiter.Allow(ip, username); !allowed {
		return nil, &LockedOutError{RetryAfter: retryAfter}
	}

	user, err := s.db.GetUserByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.db.GetUserByEmail(username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.limiter.RecordFailure(ip, username)
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.limiter.RecordFailure(ip, username)
		return nil, err
	}

	s.limiter.RecordSuccess(ip, username)
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.db.GetUserByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
