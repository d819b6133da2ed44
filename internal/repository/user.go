package repository

import (
	"context"

	"cloudvault/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicate when the email or Google id is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// UpdateGoogleProfile links a Google identity and refreshes the profile fields it provides.
	UpdateGoogleProfile(ctx context.Context, u *model.User) (*model.User, error)
}
