package handler

import (
	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// @Summary  List tags
// @Tags     tags
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} envelope
// @Router   /api/tags [get]
func ListTags(tags service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := tags.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return ok(c, list)
	}
}

// @Summary  Create a tag
// @Tags     tags
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body createTagRequest true "tag"
// @Success  201 {object} envelope
// @Failure  409 {object} errorPayload
// @Router   /api/tags [post]
func CreateTag(tags service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createTagRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		t, err := tags.Create(c.UserContext(), middleware.UserID(c), req.Name, req.Color)
		if err != nil {
			return err
		}
		return created(c, t)
	}
}

// @Summary  Rename or recolor a tag
// @Tags     tags
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string           true "tag id"
// @Param    body body updateTagRequest true "changes"
// @Success  200 {object} envelope
// @Router   /api/tags/{id} [patch]
func UpdateTag(tags service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateTagRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		t, err := tags.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), service.TagUpdate{
			Name:  req.Name,
			Color: req.Color,
		})
		if err != nil {
			return err
		}
		return ok(c, t)
	}
}

// @Summary  Delete a tag
// @Tags     tags
// @Security BearerAuth
// @Param    id path string true "tag id"
// @Success  204
// @Router   /api/tags/{id} [delete]
func DeleteTag(tags service.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := tags.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
