package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/models"
)

// Timestamps handles shared-timestamp-axis requests
// GET /v1/timestamps?case_uuid=xxx&ensemble_name=xxx&resampling_frequency=monthly&realizations=0,1
func (h *Handler) Timestamps(c *fiber.Ctx) error {
	input := &models.TimestampsRequest{
		EnsembleScope: models.EnsembleScope{
			CaseUUID:     c.Query("case_uuid"),
			EnsembleName: c.Query("ensemble_name"),
		},
		Resampling:   c.Query("resampling_frequency"),
		Realizations: c.Query("realizations"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	timestamps, err := h.vectorService.GetTimestamps(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(models.NewTimestampsResponse(timestamps))
}
