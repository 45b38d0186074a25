package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/models"
)

// RealizationsCalculatedVectorData handles per-realization calculated
// vector requests
// GET /v1/realizations_calculated_vector_data?case_uuid=xxx&ensemble_name=xxx&expression=x-y&variables=x=A,y=B&resampling_frequency=monthly&realizations=0,1&relative_to_timestamp=xxx
func (h *Handler) RealizationsCalculatedVectorData(c *fiber.Ctx) error {
	input := &models.CalculatedDataRequest{
		EnsembleScope: models.EnsembleScope{
			CaseUUID:     c.Query("case_uuid"),
			EnsembleName: c.Query("ensemble_name"),
		},
		Expression:          c.Query("expression"),
		Variables:           c.Query("variables"),
		Resampling:          c.Query("resampling_frequency"),
		Realizations:        c.Query("realizations"),
		RelativeToTimestamp: c.Query("relative_to_timestamp"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.calculatedService.GetCalculatedVectorData(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]models.RealizationDataResponse, len(result.Series))
	for i, s := range result.Series {
		out[i] = models.NewRealizationDataResponse(s, result.Metadata)
	}
	return c.JSON(out)
}

// StatisticalCalculatedVectorData handles calculated vector statistics
// requests
// GET /v1/statistical_calculated_vector_data?case_uuid=xxx&ensemble_name=xxx&expression=x-y&variables=x=A,y=B&resampling_frequency=monthly&statistic_functions=mean&realizations=0,1&relative_to_timestamp=xxx
func (h *Handler) StatisticalCalculatedVectorData(c *fiber.Ctx) error {
	input := &models.CalculatedStatisticsRequest{
		CalculatedDataRequest: models.CalculatedDataRequest{
			EnsembleScope: models.EnsembleScope{
				CaseUUID:     c.Query("case_uuid"),
				EnsembleName: c.Query("ensemble_name"),
			},
			Expression:          c.Query("expression"),
			Variables:           c.Query("variables"),
			Resampling:          c.Query("resampling_frequency"),
			Realizations:        c.Query("realizations"),
			RelativeToTimestamp: c.Query("relative_to_timestamp"),
		},
		StatisticFunctions: c.Query("statistic_functions"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.calculatedService.GetCalculatedStatistics(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(models.NewStatisticalDataResponse(*result.Result, result.Order, result.Metadata))
}
