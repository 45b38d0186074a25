package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/models"
)

// ErrorHandler returns the app-level error handler. Validation failures
// surface as *fiber.Error with their own status; anything else is a 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		errCode := "INTERNAL_ERROR"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
			if code == fiber.StatusBadRequest {
				errCode = "INVALID_REQUEST"
			} else {
				errCode = "ERROR"
			}
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", code,
				"request_id", logging.RequestIDFromContext(c.UserContext()),
				"error", err)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errCode,
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
