package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"cloudvault/internal/token"
)

// userLocalKey holds the parsed *jwt.Token set by the jwt middleware.
const userLocalKey = "user"

var errUnauthorized = fiber.NewError(fiber.StatusUnauthorized, "missing or invalid bearer token")

// Auth verifies the bearer token and rejects the request with 401 when it is missing,
// malformed, badly signed or expired.
func Auth(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: secret},
		Claims:     &token.Claims{},
		ContextKey: userLocalKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			if UserID(c) == "" {
				return errUnauthorized
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return errUnauthorized
		},
	})
}

// ClaimsFrom returns the verified claims of the caller, or nil outside Auth.
func ClaimsFrom(c *fiber.Ctx) *token.Claims {
	t, ok := c.Locals(userLocalKey).(*jwt.Token)
	if !ok || t == nil {
		return nil
	}
	claims, _ := t.Claims.(*token.Claims)
	return claims
}

// UserID returns the caller's user id, or "" outside Auth.
func UserID(c *fiber.Ctx) string {
	if claims := ClaimsFrom(c); claims != nil {
		return claims.UserID
	}
	return ""
}
