package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/models"
	"github.com/bug-sentinel/webviz/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger            *logging.Logger
	vectorService     *services.VectorService
	calculatedService *services.CalculatedService
}

// New creates a new handler instance
func New(logger *logging.Logger, store ensemble.Store) *Handler {
	vectorService := services.NewVectorService(logger, store)

	return &Handler{
		logger:            logger,
		vectorService:     vectorService,
		calculatedService: services.NewCalculatedService(logger, vectorService),
	}
}

// validationError converts a Validate() failure into the JSON error shape
func validationError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if fiberErr, ok := err.(*fiber.Error); ok {
		status = fiberErr.Code
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// serviceError maps service layer failures to HTTP responses
func serviceError(c *fiber.Ctx, err error) error {
	if svcErr, ok := err.(*services.ServiceError); ok {
		status := fiber.StatusInternalServerError
		switch svcErr.Code {
		case services.CodeVectorNotFound, services.CodeDataUnavailable, services.CodeNoStatistics:
			status = fiber.StatusNotFound
		case services.CodeUpstreamFailure:
			status = fiber.StatusBadGateway
		case services.CodeInvalidRequest:
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "Internal Server Error",
		},
	})
}
