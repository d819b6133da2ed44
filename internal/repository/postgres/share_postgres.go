package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

const shareColumns = `id, token, expires_at, is_active, file_id, created_by_id, created_at, updated_at`

// SharePostgres is a PostgreSQL implementation of repository.ShareRepository.
type SharePostgres struct {
	db *sqlx.DB
}

func NewSharePostgres(db *sqlx.DB) *SharePostgres {
	return &SharePostgres{db: db}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

// Create inserts a share row. A token collision surfaces as repository.ErrDuplicate.
func (r *SharePostgres) Create(ctx context.Context, s *model.Share) (*model.Share, error) {
	q := `
		INSERT INTO shares (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + shareColumns
	var out model.Share
	err := r.db.QueryRowxContext(ctx, q,
		s.ID,
		s.Token,
		s.ExpiresAt,
		s.IsActive,
		s.FileID,
		s.CreatedByID,
		s.CreatedAt,
		s.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// FindByToken loads a share together with the storage details of its file.
func (r *SharePostgres) FindByToken(ctx context.Context, token string) (*repository.ResolvedShare, error) {
	const q = `
		SELECT s.id, s.token, s.expires_at, s.is_active, s.file_id, s.created_by_id, s.created_at, s.updated_at,
		       f.original_name AS file_original_name,
		       f.size          AS file_size,
		       f.mime_type     AS file_mime_type,
		       f.storage_key   AS file_storage_key,
		       f.is_deleted    AS file_is_deleted
		FROM shares s
		JOIN files f ON f.id = s.file_id
		WHERE s.token = $1
	`
	var out repository.ResolvedShare
	if err := r.db.GetContext(ctx, &out, q, token); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// ListByCreator returns the user's shares, newest first.
func (r *SharePostgres) ListByCreator(ctx context.Context, userID string) ([]model.ShareWithFile, error) {
	const q = `
		SELECT s.id, s.token, s.expires_at, s.is_active, s.file_id, s.created_by_id, s.created_at, s.updated_at,
		       f.id            AS "file.id",
		       f.original_name AS "file.original_name",
		       f.size          AS "file.size",
		       f.mime_type     AS "file.mime_type"
		FROM shares s
		JOIN files f ON f.id = s.file_id
		WHERE s.created_by_id = $1
		ORDER BY s.created_at DESC, s.id DESC
	`
	items := make([]model.ShareWithFile, 0)
	if err := r.db.SelectContext(ctx, &items, q, userID); err != nil {
		return nil, err
	}
	return items, nil
}

// Deactivate turns off an owned share.
func (r *SharePostgres) Deactivate(ctx context.Context, id, userID string) error {
	const q = `UPDATE shares SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND created_by_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateExpired flips is_active off for active shares whose expiry has passed.
func (r *SharePostgres) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE shares SET is_active = FALSE, updated_at = $1 WHERE is_active AND expires_at <= $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
