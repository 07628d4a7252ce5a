// Package user holds the user aggregate and authentication-related errors.
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mhasanin/digibank/pkg/utils"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserUnauthorized is returned for failed logins and for requests with
	// a missing or invalid credential.
	ErrUserUnauthorized = errors.New("user unauthorized")
	// ErrUserNotVerified is returned when an unverified user tries to log in.
	ErrUserNotVerified = errors.New("user email not verified")
	// ErrUserExists is returned when the username or email is already taken.
	ErrUserExists = errors.New("username or email already registered")
	// ErrForbidden is returned when the caller's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
)

// Role controls access to the teller and admin surfaces.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleTeller   Role = "teller"
	RoleAdmin    Role = "admin"
)

// User is an authenticated principal. Customers own accounts and cards;
// tellers and admins act on them.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	HashedPassword string
	Names          string
	Role           Role
	Verified       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates an unverified customer with a bcrypt-hashed password.
func New(username, email, password string) (*User, error) {
	return newWithRole(username, email, password, RoleCustomer)
}

// NewWithRole creates a verified user with the given role. Used by the
// admin bootstrap CLI and by admins creating teller users.
func NewWithRole(username, email, password string, role Role) (*User, error) {
	u, err := newWithRole(username, email, password, role)
	if err != nil {
		return nil, err
	}
	u.Verified = true
	return u, nil
}

func newWithRole(username, email, password string, role Role) (*User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if !utils.IsEmail(email) {
		return nil, errors.New("invalid email address")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		CreatedAt:      time.Now(),
	}, nil
}
