package repository

import (
	"context"

	"cms-server/internal/domain"
)

// ContentRepository exposes persistence operations for Content records.
// Records are returned with their author resolved.
type ContentRepository interface {
	Create(ctx context.Context, content *domain.Content) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Content, error)
	Update(ctx context.Context, content *domain.Content) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error)
}
