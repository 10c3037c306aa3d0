package user

import (
	"net/http"
	"time"

	"github.com/courtside/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrNameRequired       = apperror.New(http.StatusBadRequest, "full name is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
)

// User represents an account able to book venues.
type User struct {
	ID            string // UUID
	Email         string
	PasswordHash  string
	FullName      string
	IsActive      bool
	IsSystemAdmin bool
	CreatedAt     time.Time
	LastLoginAt   *time.Time
}
