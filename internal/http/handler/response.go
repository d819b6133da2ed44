package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"cloudvault/internal/http/middleware"
	"cloudvault/internal/service"
)

// envelope is the success body: {"success":true,"data":...}.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Success   bool          `json:"success"`
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(envelope{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Success: true, Data: data})
}

// writeError writes the error envelope. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:       code,
			Message:    message,
			StatusCode: status,
		},
	})
}

// ErrorHandler is the Fiber global error handler. Service error kinds map to 400/401/404/409;
// anything unrecognized is a 500 whose message is only exposed when exposeInternal is set.
func ErrorHandler(exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			switch {
			case errors.Is(svcErr.Kind, service.ErrValidation):
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", svcErr.Msg)
			case errors.Is(svcErr.Kind, service.ErrUnauthenticated):
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", svcErr.Msg)
			case errors.Is(svcErr.Kind, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", svcErr.Msg)
			case errors.Is(svcErr.Kind, service.ErrConflict):
				return writeError(c, fiber.StatusConflict, "CONFLICT", svcErr.Msg)
			}
		}

		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", fe.Message)
			case fiber.StatusUnauthorized:
				return writeError(c, fe.Code, "UNAUTHENTICATED", fe.Message)
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
			default:
				return writeError(c, fe.Code, "REQUEST_ERROR", fe.Message)
			}
		}

		status := fiber.StatusInternalServerError
		if fe != nil {
			status = fe.Code
		}
		slog.ErrorContext(c.UserContext(), "request failed",
			"request_id", middleware.RequestIDFrom(c),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		msg := "internal server error"
		if exposeInternal {
			msg = err.Error()
		}
		return writeError(c, status, "INTERNAL_ERROR", msg)
	}
}
