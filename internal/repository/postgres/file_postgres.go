package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

const fileColumns = `id, name, original_name, size, mime_type, storage_key, preview_key, tags, folder,
		visibility, is_deleted, deleted_at, owner_id, created_at, updated_at`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// Tags are stored as a JSONB array; every query is parameterized.
type FilePostgres struct {
	db *sqlx.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sqlx.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	q := `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + fileColumns
	var out model.File
	err := r.db.QueryRowxContext(ctx, q,
		f.ID,
		f.Name,
		f.OriginalName,
		f.Size,
		f.MimeType,
		f.StorageKey,
		f.PreviewKey,
		f.Tags,
		f.Folder,
		string(f.Visibility),
		f.IsDeleted,
		f.DeletedAt,
		f.OwnerID,
		f.CreatedAt,
		f.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// FindByID fetches a single owned file.
func (r *FilePostgres) FindByID(ctx context.Context, id, ownerID string, includeDeleted bool) (*model.File, error) {
	q := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1 AND owner_id = $2 AND ($3 OR NOT is_deleted)
	`
	var f model.File
	if err := r.db.GetContext(ctx, &f, q, id, ownerID, includeDeleted); err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

// ListByOwner returns the owner's live files, or the visible trash when deleted is set.
func (r *FilePostgres) ListByOwner(ctx context.Context, ownerID string, deleted bool) ([]model.File, error) {
	q := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND NOT is_deleted
		ORDER BY created_at DESC, id DESC
	`
	args := []any{ownerID}
	if deleted {
		q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND is_deleted AND visibility = $2
		ORDER BY deleted_at DESC, id DESC
	`
		args = append(args, string(model.VisibilityVisible))
	}

	items := make([]model.File, 0)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// Search returns one page of live files matching the filter and the total number of matches.
func (r *FilePostgres) Search(ctx context.Context, f repository.FileFilter, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	where := []string{"owner_id = ?", "NOT is_deleted"}
	args := []any{f.OwnerID}

	if f.Query != "" {
		where = append(where, `(original_name ILIKE ? ESCAPE '\' OR tags @> jsonb_build_array(?::text))`)
		args = append(args, "%"+escapeLike(f.Query)+"%", f.Query)
	}
	if f.MimeTypePrefix != "" {
		where = append(where, `mime_type LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(f.MimeTypePrefix)+"%")
	}
	if len(f.Tags) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag IN (?))`)
		args = append(args, f.Tags)
	}
	if f.Folder != "" {
		where = append(where, "folder = ?")
		args = append(args, f.Folder)
	}
	cond := strings.Join(where, " AND ")

	// Count total rows
	qCount, countArgs, err := sqlx.In(`SELECT COUNT(*) FROM files WHERE `+cond, args...)
	if err != nil {
		return nil, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(qCount), countArgs...); err != nil {
		return nil, err
	}

	// Fetch page
	qList, listArgs, err := sqlx.In(`
		SELECT `+fileColumns+`
		FROM files
		WHERE `+cond+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	items := make([]model.File, 0)
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(qList), listArgs...); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: total,
	}, nil
}

// SoftDelete marks a live owned file as deleted.
func (r *FilePostgres) SoftDelete(ctx context.Context, id, ownerID string, at time.Time) (*model.File, error) {
	q := `
		UPDATE files
		SET is_deleted = TRUE, deleted_at = $3, updated_at = $3
		WHERE id = $1 AND owner_id = $2 AND NOT is_deleted
		RETURNING ` + fileColumns
	var f model.File
	if err := r.db.QueryRowxContext(ctx, q, id, ownerID, at).StructScan(&f); err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

// Restore brings a soft-deleted owned file back. Visibility resets so a later delete lands in the trash again.
func (r *FilePostgres) Restore(ctx context.Context, id, ownerID string) (*model.File, error) {
	q := `
		UPDATE files
		SET is_deleted = FALSE, deleted_at = NULL, visibility = $3, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND is_deleted
		RETURNING ` + fileColumns
	var f model.File
	if err := r.db.QueryRowxContext(ctx, q, id, ownerID, string(model.VisibilityVisible)).StructScan(&f); err != nil {
		return nil, translateError(err)
	}
	return &f, nil
}

// HideFromTrash marks owned soft-deleted files hidden from the trash listing.
func (r *FilePostgres) HideFromTrash(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`
		UPDATE files
		SET visibility = ?, updated_at = NOW()
		WHERE owner_id = ? AND is_deleted AND id IN (?)
	`, string(model.VisibilityHiddenFromTrash), ownerID, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTrashed removes owned soft-deleted rows and returns what was removed.
// Live files named in ids are left untouched.
func (r *FilePostgres) DeleteTrashed(ctx context.Context, ownerID string, ids []string) ([]model.File, error) {
	items := make([]model.File, 0)
	if len(ids) == 0 {
		return items, nil
	}
	q, args, err := sqlx.In(`
		DELETE FROM files
		WHERE owner_id = ? AND is_deleted AND id IN (?)
		RETURNING `+fileColumns, ownerID, ids)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteTrashedBefore removes a batch of soft-deleted rows of any owner deleted before cutoff.
// Rows locked by a concurrent restore are skipped and picked up by a later run.
func (r *FilePostgres) DeleteTrashedBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.File, error) {
	q := `
		DELETE FROM files
		WHERE id IN (
			SELECT id FROM files
			WHERE is_deleted AND deleted_at < $1
			ORDER BY deleted_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + fileColumns
	items := make([]model.File, 0)
	if err := r.db.SelectContext(ctx, &items, q, cutoff, limit); err != nil {
		return nil, err
	}
	return items, nil
}
