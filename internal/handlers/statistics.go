package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bug-sentinel/webviz/internal/models"
)

// StatisticalVectorData handles cross-realization statistics requests
// GET /v1/statistical_vector_data?case_uuid=xxx&ensemble_name=xxx&vector_name=xxx&resampling_frequency=monthly&statistic_functions=mean,p90&realizations=0,1&relative_to_timestamp=xxx
func (h *Handler) StatisticalVectorData(c *fiber.Ctx) error {
	input := &models.StatisticsRequest{
		VectorDataRequest: models.VectorDataRequest{
			EnsembleScope: models.EnsembleScope{
				CaseUUID:     c.Query("case_uuid"),
				EnsembleName: c.Query("ensemble_name"),
			},
			VectorName:          c.Query("vector_name"),
			Resampling:          c.Query("resampling_frequency"),
			Realizations:        c.Query("realizations"),
			RelativeToTimestamp: c.Query("relative_to_timestamp"),
		},
		StatisticFunctions: c.Query("statistic_functions"),
	}

	if err := input.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.vectorService.GetStatisticalVectorData(c.UserContext(), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(models.NewStatisticalDataResponse(*result.Result, result.Order, result.Metadata))
}
