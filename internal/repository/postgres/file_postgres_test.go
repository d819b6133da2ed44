package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

func TestFilePostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	f := &model.File{
		ID:           "file-1",
		Name:         "report.PDF",
		OriginalName: "report.PDF",
		Size:         10,
		MimeType:     "application/pdf",
		StorageKey:   "owner-1/files/report.PDF",
		Tags:         model.NewStringSet("work"),
		Visibility:   model.VisibilityVisible,
		OwnerID:      "owner-1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		rows := liveFileRow(sqlmock.NewRows(fileCols), f.ID, f.Name, f.MimeType, `["work"]`, now)
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(f.ID, f.Name, f.OriginalName, f.Size, f.MimeType, f.StorageKey, nil, `["work"]`, nil,
				"visible", false, nil, f.OwnerID, now, now).
			WillReturnRows(rows)

		out, err := repo.Create(ctx, f)

		require.NoError(t, err)
		assert.Equal(t, "file-1", out.ID)
		assert.Equal(t, model.StringSet{"work"}, out.Tags)
		assert.Equal(t, model.VisibilityVisible, out.Visibility)
		assert.Nil(t, out.DeletedAt)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").WillReturnError(errors.New("connection reset"))

		out, err := repo.Create(ctx, f)

		assert.Error(t, err)
		assert.Nil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := liveFileRow(sqlmock.NewRows(fileCols), "file-1", "a.txt", "text/plain", `[]`, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs("file-1", "owner-1", false).
			WillReturnRows(rows)

		f, err := repo.FindByID(ctx, "file-1", "owner-1", false)

		require.NoError(t, err)
		assert.Equal(t, "file-1", f.ID)
		assert.Empty(t, f.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE id = \\$1 AND owner_id = \\$2").
			WithArgs("missing", "owner-1", true).
			WillReturnRows(sqlmock.NewRows(fileCols))

		f, err := repo.FindByID(ctx, "missing", "owner-1", true)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, f)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_ListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("live", func(t *testing.T) {
		rows := sqlmock.NewRows(fileCols)
		liveFileRow(rows, "f2", "b.txt", "text/plain", `[]`, now)
		liveFileRow(rows, "f1", "a.txt", "text/plain", `[]`, now.Add(-time.Minute))
		mock.ExpectQuery("FROM files WHERE owner_id = \\$1 AND NOT is_deleted ORDER BY created_at DESC").
			WithArgs("owner-1").
			WillReturnRows(rows)

		items, err := repo.ListByOwner(ctx, "owner-1", false)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "f2", items[0].ID)
	})

	t.Run("trash excludes hidden", func(t *testing.T) {
		rows := trashedFileRow(sqlmock.NewRows(fileCols), "f3", "c.txt", now)
		mock.ExpectQuery("FROM files WHERE owner_id = \\$1 AND is_deleted AND visibility = \\$2").
			WithArgs("owner-1", "visible").
			WillReturnRows(rows)

		items, err := repo.ListByOwner(ctx, "owner-1", true)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsDeleted)
		require.NotNil(t, items[0].DeletedAt)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("FROM files").WithArgs("owner-2").WillReturnRows(sqlmock.NewRows(fileCols))

		items, err := repo.ListByOwner(ctx, "owner-2", false)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("all filters", func(t *testing.T) {
		filter := repository.FileFilter{
			OwnerID:        "owner-1",
			Query:          "50%_off",
			MimeTypePrefix: "image/",
			Tags:           []string{"a", "b"},
			Folder:         "work",
		}

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files WHERE owner_id = \$1 AND NOT is_deleted AND \(original_name ILIKE \$2 .+ jsonb_build_array\(\$3::text\)\) AND mime_type LIKE \$4 .+ IN \(\$5, \$6\)\) AND folder = \$7`).
			WithArgs("owner-1", `%50\%\_off%`, "50%_off", "image/%", "a", "b", "work").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := liveFileRow(sqlmock.NewRows(fileCols), "f1", "50%_off.png", "image/png", `["a"]`, time.Now())
		mock.ExpectQuery(`SELECT (.+) FROM files WHERE (.+) ORDER BY created_at DESC, id DESC LIMIT \$8 OFFSET \$9`).
			WithArgs("owner-1", `%50\%\_off%`, "50%_off", "image/%", "a", "b", "work", 20, 0).
			WillReturnRows(rows)

		res, err := repo.Search(ctx, filter, repository.PageQuery{Limit: 20, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "f1", res.Items[0].ID)
	})

	t.Run("owner only", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM files WHERE owner_id = \$1 AND NOT is_deleted$`).
			WithArgs("owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
			WithArgs("owner-1", 20, 40).
			WillReturnRows(sqlmock.NewRows(fileCols))

		res, err := repo.Search(ctx, repository.FileFilter{OwnerID: "owner-1"}, repository.PageQuery{Limit: 20, Offset: 40})

		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("timeout"))

		res, err := repo.Search(ctx, repository.FileFilter{OwnerID: "owner-1"}, repository.PageQuery{Limit: 20})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_SoftDeleteRestore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()
	at := time.Now().UTC()

	t.Run("soft delete", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_deleted = TRUE, deleted_at = \\$3").
			WithArgs("f1", "owner-1", at).
			WillReturnRows(trashedFileRow(sqlmock.NewRows(fileCols), "f1", "a.txt", at))

		f, err := repo.SoftDelete(ctx, "f1", "owner-1", at)

		require.NoError(t, err)
		assert.True(t, f.IsDeleted)
		assert.Equal(t, at, *f.DeletedAt)
	})

	t.Run("soft delete already deleted", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_deleted = TRUE").
			WithArgs("f1", "owner-1", at).
			WillReturnRows(sqlmock.NewRows(fileCols))

		f, err := repo.SoftDelete(ctx, "f1", "owner-1", at)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, f)
	})

	t.Run("restore", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_deleted = FALSE, deleted_at = NULL, visibility = \\$3").
			WithArgs("f1", "owner-1", "visible").
			WillReturnRows(liveFileRow(sqlmock.NewRows(fileCols), "f1", "a.txt", "text/plain", `[]`, at))

		f, err := repo.Restore(ctx, "f1", "owner-1")

		require.NoError(t, err)
		assert.False(t, f.IsDeleted)
		assert.Nil(t, f.DeletedAt)
	})

	t.Run("restore live file", func(t *testing.T) {
		mock.ExpectQuery("UPDATE files SET is_deleted = FALSE").
			WithArgs("f2", "owner-1", "visible").
			WillReturnRows(sqlmock.NewRows(fileCols))

		_, err := repo.Restore(ctx, "f2", "owner-1")

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_HideFromTrash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE files SET visibility = \$1, updated_at = NOW\(\) WHERE owner_id = \$2 AND is_deleted AND id IN \(\$3, \$4\)`).
		WithArgs("hidden_from_trash", "owner-1", "f1", "f2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.HideFromTrash(ctx, "owner-1", []string{"f1", "f2"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.HideFromTrash(ctx, "owner-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_DeleteTrashed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()
	at := time.Now()

	mock.ExpectQuery(`DELETE FROM files WHERE owner_id = \$1 AND is_deleted AND id IN \(\$2, \$3\) RETURNING`).
		WithArgs("owner-1", "f1", "live").
		WillReturnRows(trashedFileRow(sqlmock.NewRows(fileCols), "f1", "a.txt", at))

	items, err := repo.DeleteTrashed(ctx, "owner-1", []string{"f1", "live"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].ID)

	items, err = repo.DeleteTrashed(ctx, "owner-1", []string{})
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_DeleteTrashedBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFilePostgres(db)
	ctx := context.Background()
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	rows := sqlmock.NewRows(fileCols)
	trashedFileRow(rows, "old-1", "a.txt", cutoff.Add(-time.Hour))
	trashedFileRow(rows, "old-2", "b.txt", cutoff.Add(-2*time.Hour))
	mock.ExpectQuery(`DELETE FROM files WHERE id IN \( SELECT id FROM files WHERE is_deleted AND deleted_at < \$1 .+ FOR UPDATE SKIP LOCKED`).
		WithArgs(cutoff, 100).
		WillReturnRows(rows)

	items, err := repo.DeleteTrashedBefore(ctx, cutoff, 100)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
