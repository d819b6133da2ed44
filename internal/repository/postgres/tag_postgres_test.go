package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

var tagCols = []string{"id", "name", "color", "user_id", "created_at", "updated_at"}

func TestTagPostgres(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTagPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	tag := &model.Tag{ID: "t1", Name: "work", Color: model.DefaultTagColor, UserID: "u1", CreatedAt: now, UpdatedAt: now}

	t.Run("create", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tags").
			WithArgs("t1", "work", "#3B82F6", "u1", now, now).
			WillReturnRows(sqlmock.NewRows(tagCols).AddRow("t1", "work", "#3B82F6", "u1", now, now))

		out, err := repo.Create(ctx, tag)

		require.NoError(t, err)
		assert.Equal(t, "work", out.Name)
	})

	t.Run("create duplicate name", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO tags").WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(ctx, tag)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	t.Run("list", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tags WHERE user_id = \\$1 ORDER BY name").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(tagCols).
				AddRow("t2", "home", "#000000", "u1", now, now).
				AddRow("t1", "work", "#3B82F6", "u1", now, now))

		items, err := repo.ListByUser(ctx, "u1")

		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("update foreign tag", func(t *testing.T) {
		mock.ExpectQuery("UPDATE tags SET name = \\$3, color = \\$4").
			WithArgs("t1", "u2", "work", "#3B82F6").
			WillReturnRows(sqlmock.NewRows(tagCols))

		_, err := repo.Update(ctx, &model.Tag{ID: "t1", UserID: "u2", Name: "work", Color: "#3B82F6"})

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM tags WHERE id = \\$1 AND user_id = \\$2").
			WithArgs("t1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM tags").
			WithArgs("t1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "t1", "u1"))
		assert.ErrorIs(t, repo.Delete(ctx, "t1", "u1"), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
