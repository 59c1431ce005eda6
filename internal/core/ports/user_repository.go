package ports

import (
	"context"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// UserRepository persists account credentials. Email uniqueness is enforced
// by the store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts user and returns the stored record. It fails with
	// domain.ErrEmailExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
