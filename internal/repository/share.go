package repository

import (
	"context"
	"time"

	"cloudvault/internal/model"
)

// ResolvedShare is a share joined with the fields needed to serve its file.
type ResolvedShare struct {
	model.Share
	FileOriginalName string `db:"file_original_name"`
	FileSize         int64  `db:"file_size"`
	FileMimeType     string `db:"file_mime_type"`
	FileStorageKey   string `db:"file_storage_key"`
	FileIsDeleted    bool   `db:"file_is_deleted"`
}

// ShareRepository defines data access for share tokens.
type ShareRepository interface {
	// Create inserts a share. Returns ErrDuplicate on a token collision.
	Create(ctx context.Context, s *model.Share) (*model.Share, error)

	// FindByToken returns the share and its file regardless of state; callers decide usability.
	FindByToken(ctx context.Context, token string) (*ResolvedShare, error)

	// ListByCreator returns every share created by the user, newest first, with file projections.
	ListByCreator(ctx context.Context, userID string) ([]model.ShareWithFile, error)

	// Deactivate sets is_active=false on an owned share. Already inactive shares still match.
	Deactivate(ctx context.Context, id, userID string) error

	// DeactivateExpired flips every active share that expired before now and returns the count.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
