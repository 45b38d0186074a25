package models

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// EnsembleScope identifies one ensemble within a case. Embedded in every
// request model.
type EnsembleScope struct {
	CaseUUID     string
	EnsembleName string
}

// Validate checks the case identifier and ensemble name
func (s *EnsembleScope) Validate() error {
	if s.CaseUUID == "" || s.EnsembleName == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "case_uuid and ensemble_name are required",
		}
	}

	if _, err := uuid.Parse(s.CaseUUID); err != nil {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "case_uuid must be a valid UUID",
		}
	}
	return nil
}

// VectorNamesRequest represents the vector listing input
type VectorNamesRequest struct {
	EnsembleScope
	ExcludeAllValuesZero     bool
	ExcludeAllValuesConstant bool
}

// Validate validates the vector names input
func (r *VectorNamesRequest) Validate() error {
	return r.EnsembleScope.Validate()
}

// VectorDataRequest represents the per-realization data input
type VectorDataRequest struct {
	EnsembleScope
	VectorName          string
	Resampling          string // daily, weekly, monthly, quarterly, yearly, or empty for raw
	Realizations        string // comma-separated ids, empty means all
	RelativeToTimestamp string // RFC3339, empty means no normalization

	FrequencyParsed    *timeseries.Frequency
	RealizationsParsed []int
	RelativeToParsed   *time.Time
}

// Validate validates and parses the vector data input
func (r *VectorDataRequest) Validate() error {
	if err := r.EnsembleScope.Validate(); err != nil {
		return err
	}

	if r.VectorName == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "vector_name is required",
		}
	}

	freq, err := parseResampling(r.Resampling)
	if err != nil {
		return err
	}
	r.FrequencyParsed = freq

	realizations, err := parseRealizations(r.Realizations)
	if err != nil {
		return err
	}
	r.RealizationsParsed = realizations

	relativeTo, err := parseRelativeTo(r.RelativeToTimestamp)
	if err != nil {
		return err
	}
	r.RelativeToParsed = relativeTo

	return nil
}

// TimestampsRequest represents the shared-timestamps input
type TimestampsRequest struct {
	EnsembleScope
	Resampling   string
	Realizations string

	FrequencyParsed    *timeseries.Frequency
	RealizationsParsed []int
}

// Validate validates and parses the timestamps input
func (r *TimestampsRequest) Validate() error {
	if err := r.EnsembleScope.Validate(); err != nil {
		return err
	}

	freq, err := parseResampling(r.Resampling)
	if err != nil {
		return err
	}
	r.FrequencyParsed = freq

	realizations, err := parseRealizations(r.Realizations)
	if err != nil {
		return err
	}
	r.RealizationsParsed = realizations

	return nil
}

// StatisticsRequest represents the statistical data input
type StatisticsRequest struct {
	VectorDataRequest
	StatisticFunctions string // comma-separated, empty means all

	FunctionsParsed []timeseries.StatisticFunction
}

// Validate validates and parses the statistics input
func (r *StatisticsRequest) Validate() error {
	if err := r.VectorDataRequest.Validate(); err != nil {
		return err
	}

	functions, err := parseStatisticFunctions(r.StatisticFunctions)
	if err != nil {
		return err
	}
	r.FunctionsParsed = functions

	return nil
}

// CalculatedDataRequest represents the calculated vector input. The
// expression references vectors either directly by name or through the
// variables mapping ("x=WOPR:OP_1,y=WOPR:OP_2").
type CalculatedDataRequest struct {
	EnsembleScope
	Expression          string
	Variables           string
	Resampling          string
	Realizations        string
	RelativeToTimestamp string

	ExpressionParsed   *timeseries.Expression
	VariablesParsed    map[string]string // identifier -> vector name
	FrequencyParsed    *timeseries.Frequency
	RealizationsParsed []int
	RelativeToParsed   *time.Time
}

// Validate validates and parses the calculated vector input
func (r *CalculatedDataRequest) Validate() error {
	if err := r.EnsembleScope.Validate(); err != nil {
		return err
	}

	if r.Expression == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "expression is required",
		}
	}

	expr, err := timeseries.ParseExpression(r.Expression)
	if err != nil {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "invalid expression: " + err.Error(),
		}
	}
	r.ExpressionParsed = expr

	variables, err := parseVariables(r.Variables)
	if err != nil {
		return err
	}
	r.VariablesParsed = variables

	if len(expr.Variables()) == 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "expression must reference at least one vector",
		}
	}

	freq, err := parseResampling(r.Resampling)
	if err != nil {
		return err
	}
	r.FrequencyParsed = freq

	realizations, err := parseRealizations(r.Realizations)
	if err != nil {
		return err
	}
	r.RealizationsParsed = realizations

	relativeTo, err := parseRelativeTo(r.RelativeToTimestamp)
	if err != nil {
		return err
	}
	r.RelativeToParsed = relativeTo

	return nil
}

// VectorNames returns the vector name each expression variable resolves
// to, sorted and deduplicated
func (r *CalculatedDataRequest) VectorNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, variable := range r.ExpressionParsed.Variables() {
		name := variable
		if mapped, ok := r.VariablesParsed[variable]; ok {
			name = mapped
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CalculatedStatisticsRequest represents the calculated statistics input
type CalculatedStatisticsRequest struct {
	CalculatedDataRequest
	StatisticFunctions string

	FunctionsParsed []timeseries.StatisticFunction
}

// Validate validates and parses the calculated statistics input
func (r *CalculatedStatisticsRequest) Validate() error {
	if err := r.CalculatedDataRequest.Validate(); err != nil {
		return err
	}

	functions, err := parseStatisticFunctions(r.StatisticFunctions)
	if err != nil {
		return err
	}
	r.FunctionsParsed = functions

	return nil
}

func parseResampling(value string) (*timeseries.Frequency, error) {
	if value == "" {
		return nil, nil
	}
	freq, err := timeseries.ParseFrequency(value)
	if err != nil {
		return nil, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "resampling_frequency must be one of: daily, weekly, monthly, quarterly, yearly",
		}
	}
	return &freq, nil
}

func parseRealizations(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	realizations := make([]int, 0, len(parts))
	seen := make(map[int]bool)
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id < 0 {
			return nil, &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "realizations must be a comma-separated list of non-negative integers",
			}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		realizations = append(realizations, id)
	}
	sort.Ints(realizations)
	return realizations, nil
}

func parseRelativeTo(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "relative_to_timestamp must be in RFC3339 format (e.g., 2006-01-02T15:04:05Z)",
		}
	}
	utc := t.UTC()
	return &utc, nil
}

func parseStatisticFunctions(value string) ([]timeseries.StatisticFunction, error) {
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	functions := make([]timeseries.StatisticFunction, 0, len(parts))
	for _, part := range parts {
		fn, err := timeseries.ParseStatisticFunction(strings.TrimSpace(part))
		if err != nil {
			return nil, &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "statistic_functions must be a comma-separated list of: mean, min, max, p10, p50, p90, stddev",
			}
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

// parseVariables parses "x=WOPR:OP_1,y=FOPT" mappings
func parseVariables(value string) (map[string]string, error) {
	if value == "" {
		return nil, nil
	}

	variables := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 || strings.TrimSpace(pair[0]) == "" || strings.TrimSpace(pair[1]) == "" {
			return nil, &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "variables must be a comma-separated list of identifier=vector_name pairs",
			}
		}
		variables[strings.TrimSpace(pair[0])] = strings.TrimSpace(pair[1])
	}
	return variables, nil
}
