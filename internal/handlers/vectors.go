package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/models"
)

// VectorNames handles vector listing requests
// GET /v1/vector_names?case_uuid=xxx&ensemble_name=xxx&exclude_all_values_zero=true&exclude_all_values_constant=true
func (h *Handler) VectorNames(c *fiber.Ctx) error {
	input := &models.VectorNamesRequest{
		EnsembleScope: models.EnsembleScope{
			CaseUUID:     c.Query("case_uuid"),
			EnsembleName: c.Query("ensemble_name"),
		},
		ExcludeAllValuesZero:     c.QueryBool("exclude_all_values_zero"),
		ExcludeAllValuesConstant: c.QueryBool("exclude_all_values_constant"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	descriptions, err := h.vectorService.GetVectorNames(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(models.NewVectorDescriptionResponses(descriptions))
}

// VectorMetadata handles vector metadata requests
// GET /v1/vector_metadata?case_uuid=xxx&ensemble_name=xxx&vector_name=xxx
func (h *Handler) VectorMetadata(c *fiber.Ctx) error {
	input := &models.VectorNamesRequest{
		EnsembleScope: models.EnsembleScope{
			CaseUUID:     c.Query("case_uuid"),
			EnsembleName: c.Query("ensemble_name"),
		},
	}
	vectorName := c.Query("vector_name")

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}
	if vectorName == "" {
		return validationError(c, fiber.NewError(fiber.StatusBadRequest, "vector_name is required"))
	}

	metadata, err := h.vectorService.GetVectorMetadata(c.UserContext(), input, vectorName)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(models.VectorMetadataResponse{
		Unit:   metadata.Unit,
		IsRate: metadata.IsRate,
	})
}

// RealizationsVectorData handles per-realization series requests
// GET /v1/realizations_vector_data?case_uuid=xxx&ensemble_name=xxx&vector_name=xxx&resampling_frequency=monthly&realizations=0,1&relative_to_timestamp=xxx
func (h *Handler) RealizationsVectorData(c *fiber.Ctx) error {
	input := &models.VectorDataRequest{
		EnsembleScope: models.EnsembleScope{
			CaseUUID:     c.Query("case_uuid"),
			EnsembleName: c.Query("ensemble_name"),
		},
		VectorName:          c.Query("vector_name"),
		Resampling:          c.Query("resampling_frequency"),
		Realizations:        c.Query("realizations"),
		RelativeToTimestamp: c.Query("relative_to_timestamp"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.vectorService.GetRealizationVectorData(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]models.RealizationDataResponse, len(result.Series))
	for i, s := range result.Series {
		out[i] = models.NewRealizationDataResponse(s, result.Metadata)
	}
	return c.JSON(out)
}
