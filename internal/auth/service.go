package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/config"
	"github.com/avolkau/bookvault/internal/database/tokens"
	"github.com/avolkau/bookvault/internal/database/users"
	"github.com/avolkau/bookvault/internal/entities"
)

var (
	ErrFieldsRequired   = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUserExists       = errors.New("username already taken")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidToken     = errors.New("invalid authorization token")
)

// Service handles registration, login and token lifecycle.
type Service struct {
	users  *users.Repository
	tokens *tokens.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		users:  users.NewRepository(db),
		tokens: tokens.NewRepository(db),
		config: cfg,
	}
}

// Register validates input, creates the user and issues a session token.
func (s *Service) Register(username, password, confirmPassword string) (*entities.User, string, error) {
	if username == "" || password == "" || confirmPassword == "" {
		return nil, "", ErrFieldsRequired
	}
	if password != confirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	// Exact, case-sensitive uniqueness check
	_, err := s.users.GetByUsername(username)
	if err == nil {
		return nil, "", ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(username, passwordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and issues a fresh token, invalidating any
// prior token for the user. The "user not found" / "wrong password"
// distinction is kept as-is: the SPA surfaces the two messages.
func (s *Service) Login(username, password string) (*entities.User, string, error) {
	if username == "" || password == "" {
		return nil, "", ErrFieldsRequired
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ValidateToken resolves a bearer token to its user via an indexed
// exact-match lookup. Returns ErrInvalidToken on any miss.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.tokens.GetUserByValue(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}

// Logout deletes the token row, ending the session.
func (s *Service) Logout(token string) error {
	return s.tokens.DeleteByValue(token)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issueToken(userID uint) (string, error) {
	value, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if _, err := s.tokens.Replace(userID, value); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}

	return value, nil
}
