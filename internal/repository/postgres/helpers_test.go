package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

var fileCols = []string{
	"id", "name", "original_name", "size", "mime_type", "storage_key", "preview_key", "tags", "folder",
	"visibility", "is_deleted", "deleted_at", "owner_id", "created_at", "updated_at",
}

func liveFileRow(rows *sqlmock.Rows, id, name, mimeType, tagsJSON string, at time.Time) *sqlmock.Rows {
	return rows.AddRow(id, name, name, int64(10), mimeType, "owner-1/files/"+name, nil, []byte(tagsJSON), nil,
		"visible", false, nil, "owner-1", at, at)
}

func trashedFileRow(rows *sqlmock.Rows, id, name string, deletedAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, name, name, int64(10), "text/plain", "owner-1/files/"+name, nil, []byte(`[]`), nil,
		"visible", true, deletedAt, "owner-1", deletedAt, deletedAt)
}
