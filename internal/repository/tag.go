package repository

import (
	"context"

	"cloudvault/internal/model"
)

// TagRepository defines data access for the per-user tag palette.
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) (*model.Tag, error)
	ListByUser(ctx context.Context, userID string) ([]model.Tag, error)
	Update(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Delete(ctx context.Context, id, userID string) error
}
