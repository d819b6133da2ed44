package model

import "time"

// User is an account holder. Accounts created through Google sign-in have no password hash.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  *string   `db:"password_hash" json:"-"`
	Name          string    `db:"name" json:"name"`
	GoogleID      *string   `db:"google_id" json:"-"`
	GoogleEmail   *string   `db:"google_email" json:"googleEmail,omitempty"`
	Avatar        *string   `db:"avatar" json:"avatar,omitempty"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
