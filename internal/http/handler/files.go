package handler

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// ListFiles returns live files, or the trash with ?deleted=true.
//
// @Summary  List files
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    deleted query bool false "list the trash instead"
// @Success  200 {object} envelope
// @Router   /api/files [get]
func ListFiles(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := files.List(c.UserContext(), middleware.UserID(c), c.QueryBool("deleted"))
		if err != nil {
			return err
		}
		return ok(c, list)
	}
}

// UploadFile stores a multipart file (field "file") with optional folder, tags (JSON array) and name.
//
// @Summary  Upload a file
// @Tags     files
// @Security BearerAuth
// @Accept   multipart/form-data
// @Produce  json
// @Param    file   formData file   true  "content"
// @Param    folder formData string false "folder"
// @Param    tags   formData string false "JSON array of tags"
// @Param    name   formData string false "desired file name"
// @Success  201 {object} envelope
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /api/files/upload [post]
func UploadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		tags, err := parseTagsField(c.FormValue("tags"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TAGS", "tags must be a JSON array of strings")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		file, err := files.Upload(c.UserContext(), service.UploadInput{
			OwnerID:      middleware.UserID(c),
			Data:         data,
			MimeType:     fh.Header.Get(fiber.HeaderContentType),
			OriginalName: fh.Filename,
			DesiredName:  c.FormValue("name"),
			Folder:       c.FormValue("folder"),
			Tags:         tags,
		})
		if err != nil {
			return err
		}
		return created(c, file)
	}
}

func parseTagsField(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// SearchFiles pages through the caller's live files matching a name or tag query, MIME prefix and tags.
//
// @Summary  Search live files
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    q      query string false "name substring or exact tag"
// @Param    type   query string false "MIME type prefix, e.g. image/"
// @Param    tags   query string false "comma-separated tags, at least one must be present"
// @Param    folder query string false "exact folder"
// @Param    page   query int    false "1-based page"
// @Param    limit  query int    false "page size (max 100)"
// @Success  200 {object} envelope
// @Router   /api/files/search [get]
func SearchFiles(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := queryInt(c, "page")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := queryInt(c, "limit")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		var tags []string
		if raw := c.Query("tags"); raw != "" {
			tags = strings.Split(raw, ",")
		}

		res, err := files.Search(c.UserContext(), service.SearchInput{
			OwnerID:  middleware.UserID(c),
			Query:    c.Query("q"),
			MimeType: c.Query("type"),
			Tags:     tags,
			Folder:   c.Query("folder"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		return ok(c, res)
	}
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// GetFile returns file metadata. ?deleted=true also finds trashed files.
//
// @Summary  File metadata
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "file id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/files/{id} [get]
func GetFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := files.Get(c.UserContext(), c.Params("id"), middleware.UserID(c), c.QueryBool("deleted"))
		if err != nil {
			return err
		}
		return ok(c, f)
	}
}

// DownloadFile returns a signed URL for the file bytes.
//
// @Summary  Signed download URL
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "file id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/files/{id}/download [get]
func DownloadFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := files.DownloadURL(c.UserContext(), c.Params("id"), middleware.UserID(c), c.QueryBool("deleted"))
		if err != nil {
			return err
		}
		return ok(c, u)
	}
}

// PreviewFile returns a signed preview URL, or null data when the file has none.
//
// @Summary  Signed preview URL
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "file id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/files/{id}/preview [get]
func PreviewFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := files.PreviewURL(c.UserContext(), c.Params("id"), middleware.UserID(c), c.QueryBool("deleted"))
		if err != nil {
			return err
		}
		// a nil *SignedURL encodes as null
		return ok(c, u)
	}
}

// DeleteFile moves a file to the trash.
//
// @Summary  Soft delete
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "file id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/files/{id} [delete]
func DeleteFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := files.SoftDelete(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return err
		}
		return ok(c, f)
	}
}

// RestoreFile moves a file out of the trash and back into the live listing.
//
// @Summary  Restore from trash
// @Tags     files
// @Security BearerAuth
// @Produce  json
// @Param    id path string true "file id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/files/{id}/restore [patch]
func RestoreFile(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := files.Restore(c.UserContext(), c.Params("id"), middleware.UserID(c))
		if err != nil {
			return err
		}
		return ok(c, f)
	}
}

// HideFromTrash removes trashed files from the trash view without deleting them.
//
// @Summary  Hide trashed files from the trash view
// @Tags     files
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body fileIDsRequest true "file ids"
// @Success  200 {object} envelope
// @Failure  400 {object} errorPayload
// @Router   /api/files/trash/hide [post]
func HideFromTrash(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req fileIDsRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		n, err := files.HideFromTrash(c.UserContext(), middleware.UserID(c), req.FileIDs)
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{"count": n})
	}
}

// PurgeTrash permanently deletes trashed files along with their stored objects.
//
// @Summary  Permanently delete trashed files
// @Tags     files
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body fileIDsRequest true "file ids"
// @Success  200 {object} envelope
// @Failure  400 {object} errorPayload
// @Router   /api/files/trash/delete [post]
func PurgeTrash(files service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req fileIDsRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		n, err := files.PurgePermanently(c.UserContext(), middleware.UserID(c), req.FileIDs)
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{"count": n})
	}
}
