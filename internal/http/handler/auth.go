package handler

import (
	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// Register creates a password account and signs it in.
//
// @Summary  Register
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body registerRequest true "account"
// @Success  201 {object} envelope
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /api/auth/register [post]
func Register(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := auth.Register(c.UserContext(), service.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if err != nil {
			return err
		}
		return created(c, res)
	}
}

// Login exchanges email and password for a bearer token.
//
// @Summary  Login
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} envelope
// @Failure  401 {object} errorPayload
// @Router   /api/auth/login [post]
func Login(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := auth.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return err
		}
		return ok(c, res)
	}
}

// GoogleLogin exchanges a Google id-token for a bearer token.
//
// @Summary  Google sign-in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body googleLoginRequest true "id token"
// @Success  200 {object} envelope
// @Failure  401 {object} errorPayload
// @Router   /api/auth/google [post]
func GoogleLogin(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req googleLoginRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		res, err := auth.GoogleLogin(c.UserContext(), req.IDToken)
		if err != nil {
			return err
		}
		return ok(c, res)
	}
}

// GoogleAuthURL
//
// @Summary  Google consent URL
// @Tags     auth
// @Produce  json
// @Success  200 {object} envelope
// @Router   /api/auth/google/url [get]
func GoogleAuthURL(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, state, err := auth.GoogleAuthURL()
		if err != nil {
			return err
		}
		return ok(c, fiber.Map{"url": u, "state": state})
	}
}

// Profile
//
// @Summary  Caller profile
// @Tags     auth
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} envelope
// @Failure  401 {object} errorPayload
// @Router   /api/auth/profile [get]
func Profile(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := auth.Profile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return err
		}
		return ok(c, u)
	}
}
