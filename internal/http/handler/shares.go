package handler

import (
	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// CreateShare issues a share token for the file in the path.
//
// @Summary  Share a file
// @Tags     shares
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string             true  "file id"
// @Param    body body createShareRequest false "optional expiry"
// @Success  201 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/shares/{id} [post]
func CreateShare(shares service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createShareRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		s, err := shares.Create(c.UserContext(), c.Params("id"), middleware.UserID(c), req.ExpiresAt)
		if err != nil {
			return err
		}
		return created(c, s)
	}
}

// ListShares returns every share link the caller created, newest first.
//
// @Summary  Shares created by the caller
// @Tags     shares
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} envelope
// @Router   /api/shares [get]
func ListShares(shares service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := shares.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return ok(c, list)
	}
}

// ResolveShare is public: any usable token yields a fresh signed URL.
//
// @Summary  Resolve a share token
// @Tags     shares
// @Produce  json
// @Param    token path string true "share token"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/shares/{token} [get]
func ResolveShare(shares service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := shares.Resolve(c.UserContext(), c.Params("token"))
		if err != nil {
			return err
		}
		return ok(c, res)
	}
}

// DeactivateShare revokes a share link so its token no longer resolves.
//
// @Summary  Revoke a share
// @Tags     shares
// @Security BearerAuth
// @Param    id path string true "share id"
// @Success  200 {object} envelope
// @Failure  404 {object} errorPayload
// @Router   /api/shares/{id} [delete]
func DeactivateShare(shares service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := shares.Deactivate(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
			return err
		}
		return ok(c, fiber.Map{"deactivated": true})
	}
}
