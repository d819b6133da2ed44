package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

const tagColumns = `id, name, color, user_id, created_at, updated_at`

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sqlx.DB
}

func NewTagPostgres(db *sqlx.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

func (r *TagPostgres) Create(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	q := `
		INSERT INTO tags (` + tagColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tagColumns
	var out model.Tag
	err := r.db.QueryRowxContext(ctx, q, t.ID, t.Name, t.Color, t.UserID, t.CreatedAt, t.UpdatedAt).StructScan(&out)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

func (r *TagPostgres) ListByUser(ctx context.Context, userID string) ([]model.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags WHERE user_id = $1 ORDER BY name`
	items := make([]model.Tag, 0)
	if err := r.db.SelectContext(ctx, &items, q, userID); err != nil {
		return nil, err
	}
	return items, nil
}

// Update renames or recolors an owned tag.
func (r *TagPostgres) Update(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	q := `
		UPDATE tags
		SET name = $3, color = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + tagColumns
	var out model.Tag
	if err := r.db.QueryRowxContext(ctx, q, t.ID, t.UserID, t.Name, t.Color).StructScan(&out); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

func (r *TagPostgres) Delete(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM tags WHERE id = $1 AND user_id = $2`
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
