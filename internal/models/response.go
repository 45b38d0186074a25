package models

import (
	"time"

	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// VectorDescriptionResponse represents one available vector
type VectorDescriptionResponse struct {
	Name            string `json:"name"`
	DescriptiveName string `json:"descriptive_name"`
	HasHistorical   bool   `json:"has_historical"`
}

// VectorMetadataResponse represents unit and rate classification
type VectorMetadataResponse struct {
	Unit   string `json:"unit"`
	IsRate bool   `json:"is_rate"`
}

// RealizationDataResponse represents one realization's series. Values
// are null where the series has no value at a grid point.
type RealizationDataResponse struct {
	Realization int        `json:"realization"`
	Timestamps  []string   `json:"timestamps"`
	Values      []*float64 `json:"values"`
	Unit        string     `json:"unit"`
	IsRate      bool       `json:"is_rate"`
}

// StatisticValuesResponse represents one statistic over the shared grid
type StatisticValuesResponse struct {
	Statistic string     `json:"statistic"`
	Values    []*float64 `json:"values"`
}

// StatisticalDataResponse represents cross-realization statistics
type StatisticalDataResponse struct {
	Timestamps []string                  `json:"timestamps"`
	Statistics []StatisticValuesResponse `json:"statistics"`
	Unit       string                    `json:"unit"`
	IsRate     bool                      `json:"is_rate"`
}

// TimestampsResponse represents the shared timestamp axis
type TimestampsResponse struct {
	Timestamps []string `json:"timestamps"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewVectorDescriptionResponses converts store descriptions to the wire shape
func NewVectorDescriptionResponses(descriptions []ensemble.VectorDescription) []VectorDescriptionResponse {
	out := make([]VectorDescriptionResponse, len(descriptions))
	for i, d := range descriptions {
		out[i] = VectorDescriptionResponse{
			Name:            d.Name,
			DescriptiveName: d.DescriptiveName,
			HasHistorical:   d.HasHistorical,
		}
	}
	return out
}

// NewRealizationDataResponse converts one resampled series to the wire shape
func NewRealizationDataResponse(s timeseries.ResampledSeries, metadata timeseries.VectorMetadata) RealizationDataResponse {
	return RealizationDataResponse{
		Realization: s.Realization,
		Timestamps:  formatTimestamps(s.Timestamps),
		Values:      maskedValues(s.Values, s.Present),
		Unit:        metadata.Unit,
		IsRate:      metadata.IsRate,
	}
}

// NewStatisticalDataResponse converts a statistics result to the wire shape.
// The statistics appear in the order they were requested.
func NewStatisticalDataResponse(result timeseries.StatisticResult, order []timeseries.StatisticFunction, metadata timeseries.VectorMetadata) StatisticalDataResponse {
	statistics := make([]StatisticValuesResponse, 0, len(order))
	for _, fn := range order {
		values, ok := result.Values[fn]
		if !ok {
			continue
		}
		statistics = append(statistics, StatisticValuesResponse{
			Statistic: string(fn),
			Values:    maskedValues(values, result.Defined),
		})
	}

	return StatisticalDataResponse{
		Timestamps: formatTimestamps(result.Grid),
		Statistics: statistics,
		Unit:       metadata.Unit,
		IsRate:     metadata.IsRate,
	}
}

// NewTimestampsResponse converts a timestamp axis to the wire shape
func NewTimestampsResponse(timestamps []time.Time) TimestampsResponse {
	return TimestampsResponse{Timestamps: formatTimestamps(timestamps)}
}

func formatTimestamps(timestamps []time.Time) []string {
	out := make([]string, len(timestamps))
	for i, t := range timestamps {
		out[i] = t.UTC().Format(time.RFC3339)
	}
	return out
}

// maskedValues maps absent points to JSON null
func maskedValues(values []float64, present []bool) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if present[i] {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}
