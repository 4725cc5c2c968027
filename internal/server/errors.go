// Package server provides the HTTP REST API for career-copilot.
package server

import (
	"fmt"
	"net/http"

	"github.com/jonathan/career-copilot/internal/ai"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates the token subject no longer resolves to a user
type ErrUserNotFound struct {
	Email string
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.Email)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrUserNotFound:
		return http.StatusNotFound
	case *ai.NotConfiguredError:
		return http.StatusServiceUnavailable
	case *ai.UpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
