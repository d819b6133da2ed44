package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cloudvault/internal/model"
	"cloudvault/internal/repository"
)

const userColumns = `id, email, password_hash, name, google_id, google_email, avatar, email_verified, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sqlx.DB
}

func NewUserPostgres(db *sqlx.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a user. Unique violations on email or google_id surface as repository.ErrDuplicate.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns
	var out model.User
	err := r.db.QueryRowxContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.GoogleID,
		u.GoogleEmail,
		u.Avatar,
		u.EmailVerified,
		u.CreatedAt,
		u.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
}

func (r *UserPostgres) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
}

// UpdateGoogleProfile links the Google identity to an existing account.
func (r *UserPostgres) UpdateGoogleProfile(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		UPDATE users
		SET google_id = $2, google_email = $3, name = $4, avatar = $5, email_verified = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	var out model.User
	err := r.db.QueryRowxContext(ctx, q,
		u.ID,
		u.GoogleID,
		u.GoogleEmail,
		u.Name,
		u.Avatar,
		u.EmailVerified,
	).StructScan(&out)
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

func (r *UserPostgres) findOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}
