package repository

import (
	"context"

	"cms-server/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Lookups of a missing user return an error wrapping domain.ErrNotFound and
// duplicate emails an error wrapping domain.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	Delete(ctx context.Context, id int64) error
}
