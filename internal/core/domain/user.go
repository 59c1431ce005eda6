package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailExists              = errors.New("email already exists")
	ErrInvalidEmail             = errors.New("invalid email address")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("access forbidden")
	ErrMissingFields            = errors.New("all password fields are required")
	ErrPasswordMismatch         = errors.New("new password and confirmation do not match")
	ErrPasswordUnchanged        = errors.New("new password must be different from current password")
	ErrWeakPassword             = errors.New("password must be 8-32 characters and contain at least 1 uppercase letter, 1 lowercase letter, and 1 number or special character")
	ErrInvalidRegistration      = errors.New("first name, last name, email and password are required")
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User models an account holder.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the outward view of a User. It never carries the password hash.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Public maps the user to its outward view.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// Principal is the authenticated subject extracted from a bearer token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}
