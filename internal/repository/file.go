package repository

import (
	"context"
	"time"

	"cloudvault/internal/model"
)

// FileFilter narrows a search over an owner's live (not soft-deleted) files.
// Query matches a case-insensitive substring of the original name OR an exact tag.
// All set fields are AND'ed together.
type FileFilter struct {
	OwnerID        string
	Query          string
	MimeTypePrefix string
	Tags           []string // at least one must be present
	Folder         string
}

// FileRepository defines data access for file metadata.
// Every owner-scoped method treats files of other owners as nonexistent.
type FileRepository interface {
	// Create inserts a file row and returns the stored record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns an owned file. Soft-deleted files are only returned when includeDeleted is set.
	FindByID(ctx context.Context, id, ownerID string, includeDeleted bool) (*model.File, error)

	// ListByOwner returns live files, or the visible trash when deleted is set, newest first.
	ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]model.File, error)

	// Search returns one page of live files matching the filter plus the total match count.
	Search(ctx context.Context, f FileFilter, pq PageQuery) (*PageResult[model.File], error)

	// SoftDelete marks a live owned file deleted. Returns ErrNotFound when no live row matched.
	SoftDelete(ctx context.Context, id, ownerID string, at time.Time) (*model.File, error)

	// Restore clears the deleted state of an owned soft-deleted file. Returns ErrNotFound when nothing matched.
	Restore(ctx context.Context, id, ownerID string) (*model.File, error)

	// HideFromTrash marks owned soft-deleted files hidden from the trash listing and returns the affected count.
	HideFromTrash(ctx context.Context, ownerID string, ids []string) (int64, error)

	// DeleteTrashed removes owned soft-deleted rows and returns the rows actually removed.
	DeleteTrashed(ctx context.Context, ownerID string, ids []string) ([]model.File, error)

	// DeleteTrashedBefore removes up to limit soft-deleted rows (any owner) deleted before cutoff.
	DeleteTrashedBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.File, error)
}
