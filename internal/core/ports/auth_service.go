package ports

import (
	"context"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	CreateUser(ctx context.Context, in RegisterInput) (*domain.PublicUser, error)
	ChangePassword(ctx context.Context, p domain.Principal, in ChangePasswordInput) error
	Profile(ctx context.Context, p domain.Principal) (*domain.PublicUser, error)
}
