package model

import "time"

// Visibility controls whether a soft-deleted file still shows up in the trash listing.
type Visibility string

const (
	VisibilityVisible         Visibility = "visible"
	VisibilityHiddenFromTrash Visibility = "hidden_from_trash"
)

// Storage categories derived from a file's MIME type.
const (
	CategoryImage = "image"
	CategoryVideo = "video"
	CategoryFiles = "files"
)

// File is the metadata record for an object held in storage.
// StorageKey is {ownerID}/{category}/{name} and never changes once set.
// IsDeleted and DeletedAt move together: a live file has no DeletedAt.
type File struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	OriginalName string     `db:"original_name" json:"originalName"`
	Size         int64      `db:"size" json:"size"`
	MimeType     string     `db:"mime_type" json:"mimeType"`
	StorageKey   string     `db:"storage_key" json:"storageKey"`
	PreviewKey   *string    `db:"preview_key" json:"previewKey,omitempty"`
	Tags         StringSet  `db:"tags" json:"tags"`
	Folder       *string    `db:"folder" json:"folder,omitempty"`
	Visibility   Visibility `db:"visibility" json:"visibility"`
	IsDeleted    bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deletedAt"`
	OwnerID      string     `db:"owner_id" json:"ownerId"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasPreview reports whether a thumbnail object was stored alongside the file.
func (f *File) HasPreview() bool {
	return f.PreviewKey != nil && *f.PreviewKey != ""
}
