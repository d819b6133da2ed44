package model

import "time"

// Share grants time-boxed anonymous access to one file through an unguessable token.
// Once IsActive is false the share is never reactivated.
type Share struct {
	ID          string    `db:"id" json:"id"`
	Token       string    `db:"token" json:"token"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	FileID      string    `db:"file_id" json:"fileId"`
	CreatedByID string    `db:"created_by_id" json:"createdById"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Usable reports whether the share itself is active and unexpired at now.
// The referenced file must additionally exist and not be soft-deleted.
func (s *Share) Usable(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}

// SharedFile is the read-only file projection attached to share listings. It carries no storage keys.
type SharedFile struct {
	ID           string `db:"id" json:"id"`
	OriginalName string `db:"original_name" json:"originalName"`
	Size         int64  `db:"size" json:"size"`
	MimeType     string `db:"mime_type" json:"mimeType"`
}

// ShareWithFile is a share annotated with its file projection.
type ShareWithFile struct {
	Share
	File SharedFile `db:"file" json:"file"`
}
