// Package server provides the HTTP REST API for career-copilot.
package server

import (
	"fmt"
	"time"

	"github.com/jonathan/career-copilot/internal/config"
	"github.com/jonathan/career-copilot/internal/store"
	"github.com/jonathan/career-copilot/internal/types"
)

// UserService provides business logic for user authentication operations
type UserService struct {
	users          *store.Users
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(users *store.Users, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		users:          users,
		passwordConfig: passwordConfig,
	}
}

// publicView converts a stored record to the public user view, excluding the password.
func publicView(user *store.User) *types.User {
	if user == nil {
		return nil
	}
	return &types.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Register creates a new user. The registry performs the duplicate check and
// insert atomically, so concurrent registrations of one email cannot both succeed.
func (s *UserService) Register(req *types.RegisterRequest) (*types.User, error) {
	stored, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password: %w", err)
	}

	user, ok := s.users.Create(req.Name, req.Email, stored, time.Now().UTC().Format(time.RFC3339))
	if !ok {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	return publicView(user), nil
}

// Login authenticates a user and returns the public user view
func (s *UserService) Login(req *types.LoginRequest) (*types.User, error) {
	user, exists := s.users.GetByEmail(req.Email)

	// Security: Always return generic error if user not found or password wrong
	if !exists {
		return nil, &ErrInvalidCredentials{}
	}

	if !s.passwordConfig.VerifyPassword(req.Password, user.Password) {
		return nil, &ErrInvalidCredentials{}
	}

	return publicView(user), nil
}

// GetCurrentUser resolves a verified token subject to the public user view
func (s *UserService) GetCurrentUser(email string) (*types.User, error) {
	user, exists := s.users.GetByEmail(email)
	if !exists {
		return nil, &ErrUserNotFound{Email: email}
	}

	return publicView(user), nil
}
