package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/models"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// CalculatedService evaluates arithmetic expressions over named vectors.
// Each referenced vector is resolved independently through the resample
// and alignment pipeline onto one shared grid before pointwise
// evaluation.
type CalculatedService struct {
	logger *logging.Logger
	vector *VectorService
}

// NewCalculatedService creates a new CalculatedService
func NewCalculatedService(logger *logging.Logger, vector *VectorService) *CalculatedService {
	return &CalculatedService{
		logger: logger,
		vector: vector,
	}
}

// GetCalculatedVectorData returns the per-realization evaluated series
func (s *CalculatedService) GetCalculatedVectorData(ctx context.Context, input *models.CalculatedDataRequest) (*RealizationDataResult, error) {
	startTime := time.Now()

	series, metadata, err := s.evaluate(ctx, input)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("Calculated data computed",
		"expression", input.Expression,
		"realizations", len(series),
		"latency_ms", time.Since(startTime).Milliseconds())

	return &RealizationDataResult{Series: series, Metadata: metadata}, nil
}

// GetCalculatedStatistics computes cross-realization statistics over the
// evaluated series
func (s *CalculatedService) GetCalculatedStatistics(ctx context.Context, input *models.CalculatedStatisticsRequest) (*StatisticsResult, error) {
	startTime := time.Now()

	series, metadata, err := s.evaluate(ctx, &input.CalculatedDataRequest)
	if err != nil {
		return nil, err
	}

	order := input.FunctionsParsed
	if len(order) == 0 {
		order = timeseries.AllStatisticFunctions()
	}

	set := assembleSet(series)
	result, err := timeseries.Aggregate(set, order)
	if err != nil {
		if errors.Is(err, timeseries.ErrNoComputableStatistics) {
			return nil, NewServiceError(CodeNoStatistics, "no statistics can be computed for the requested range")
		}
		return nil, NewServiceError(CodeUpstreamFailure, err.Error())
	}

	logging.FromContext(ctx).Info("Calculated statistics computed",
		"expression", input.Expression,
		"realizations", len(series),
		"grid_points", len(set.Grid),
		"latency_ms", time.Since(startTime).Milliseconds())

	return &StatisticsResult{Result: result, Order: order, Metadata: metadata}, nil
}

// evaluate fetches every referenced vector, builds the shared grid, and
// evaluates the expression per realization and grid point
func (s *CalculatedService) evaluate(ctx context.Context, input *models.CalculatedDataRequest) ([]timeseries.ResampledSeries, timeseries.VectorMetadata, error) {
	vectorNames := input.VectorNames()

	// vector name -> realization -> raw series
	rawsByVector := make(map[string]map[int]timeseries.RawSeries, len(vectorNames))
	var allRaws []timeseries.RawSeries
	for _, name := range vectorNames {
		raws, err := s.vector.store.FetchVector(ctx, input.CaseUUID, input.EnsembleName, name, input.RealizationsParsed)
		if err != nil {
			// An expression naming a vector the ensemble does not have is a
			// malformed request, not a missing resource.
			var unavailable *ensemble.UnavailableError
			if errors.As(err, &unavailable) && unavailable.NotFound() {
				return nil, timeseries.VectorMetadata{},
					NewServiceErrorWithDetails(CodeInvalidRequest,
						fmt.Sprintf("%s: %s", timeseries.ErrUnknownVector.Error(), name),
						map[string]interface{}{"vector": name})
			}
			return nil, timeseries.VectorMetadata{}, s.vector.storeError(err, name)
		}

		byRealization := make(map[int]timeseries.RawSeries, len(raws))
		for _, raw := range raws {
			if raw.Empty() {
				continue
			}
			byRealization[raw.Realization] = raw
			allRaws = append(allRaws, raw)
		}
		rawsByVector[name] = byRealization
	}

	realizations := commonRealizations(rawsByVector)
	if dropped := len(allRaws) - len(realizations)*len(vectorNames); dropped > 0 {
		s.logger.Debug("Realizations dropped from calculation",
			"expression", input.Expression,
			"kept", len(realizations),
			"extra_series", dropped)
	}
	grid, err := s.sharedGrid(input, rawsByVector, realizations, allRaws)
	if err != nil {
		return nil, timeseries.VectorMetadata{}, err
	}

	series := make([]timeseries.ResampledSeries, 0, len(realizations))
	for _, realization := range realizations {
		series = append(series, s.evaluateRealization(input, rawsByVector, realization, grid))
	}

	return series, calculatedMetadata(rawsByVector), nil
}

// sharedGrid builds the one grid every realization's result aligns to:
// the exact timestamp intersection over every contributing series in raw
// mode, the frequency grid over the union of all raw ranges otherwise
func (s *CalculatedService) sharedGrid(input *models.CalculatedDataRequest, rawsByVector map[string]map[int]timeseries.RawSeries, realizations []int, allRaws []timeseries.RawSeries) ([]time.Time, error) {
	if input.FrequencyParsed == nil {
		var sets [][]time.Time
		for _, byRealization := range rawsByVector {
			for _, realization := range realizations {
				raw, ok := byRealization[realization]
				if !ok {
					continue
				}
				sets = append(sets, raw.Timestamps)
			}
		}
		if len(sets) == 0 {
			return []time.Time{}, nil
		}
		return timeseries.IntersectTimestamps(sets), nil
	}

	start, end, ok := timeseries.UnionRange(allRaws)
	if !ok {
		return []time.Time{}, nil
	}
	grid, err := input.FrequencyParsed.Grid(start, end)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}
	return grid, nil
}

// evaluateRealization resamples each input vector onto the grid and
// evaluates the expression pointwise. Any absent input makes the result
// absent; a missing baseline blanks the whole realization.
func (s *CalculatedService) evaluateRealization(input *models.CalculatedDataRequest, rawsByVector map[string]map[int]timeseries.RawSeries, realization int, grid []time.Time) timeseries.ResampledSeries {
	out := timeseries.ResampledSeries{
		Realization: realization,
		Timestamps:  grid,
		Values:      make([]float64, len(grid)),
		Present:     make([]bool, len(grid)),
	}

	inputs := make(map[string]timeseries.ResampledSeries, len(rawsByVector))
	for name, byRealization := range rawsByVector {
		inputs[name] = timeseries.Resample(byRealization[realization], grid)
	}

	var baseline float64
	hasBaseline := input.RelativeToParsed == nil
	if input.RelativeToParsed != nil {
		baseline, hasBaseline = s.baselineValue(input, rawsByVector, realization)
		if !hasBaseline {
			return out
		}
	}

	env := make(map[string]float64, len(input.ExpressionParsed.Variables()))
	for i := range grid {
		complete := true
		for _, variable := range input.ExpressionParsed.Variables() {
			resolved := inputs[s.resolveVector(input, variable)]
			if !resolved.Present[i] {
				complete = false
				break
			}
			env[variable] = resolved.Values[i]
		}
		if !complete {
			continue
		}

		value, ok := input.ExpressionParsed.Evaluate(env)
		if !ok {
			continue
		}
		out.Values[i] = value - baseline
		out.Present[i] = true
	}
	return out
}

// baselineValue evaluates the expression at the reference timestamp over
// the realization's raw input series
func (s *CalculatedService) baselineValue(input *models.CalculatedDataRequest, rawsByVector map[string]map[int]timeseries.RawSeries, realization int) (float64, bool) {
	env := make(map[string]float64, len(input.ExpressionParsed.Variables()))
	for _, variable := range input.ExpressionParsed.Variables() {
		raw, ok := rawsByVector[s.resolveVector(input, variable)][realization]
		if !ok {
			return 0, false
		}
		value, ok := timeseries.ValueAt(raw, *input.RelativeToParsed)
		if !ok {
			return 0, false
		}
		env[variable] = value
	}
	return input.ExpressionParsed.Evaluate(env)
}

func (s *CalculatedService) resolveVector(input *models.CalculatedDataRequest, variable string) string {
	if mapped, ok := input.VariablesParsed[variable]; ok {
		return mapped
	}
	return variable
}

// commonRealizations returns, sorted, the realizations present in every
// input vector. A realization missing from any vector would evaluate to
// an all-absent series, so it is dropped instead.
func commonRealizations(rawsByVector map[string]map[int]timeseries.RawSeries) []int {
	counts := make(map[int]int)
	for _, byRealization := range rawsByVector {
		for realization := range byRealization {
			counts[realization]++
		}
	}

	var realizations []int
	for realization, count := range counts {
		if count == len(rawsByVector) {
			realizations = append(realizations, realization)
		}
	}
	sort.Ints(realizations)
	return realizations
}

// calculatedMetadata reports the input vectors' unit and rate flag when
// they all agree, and neutral metadata otherwise
func calculatedMetadata(rawsByVector map[string]map[int]timeseries.RawSeries) timeseries.VectorMetadata {
	var metadata timeseries.VectorMetadata
	first := true
	for _, byRealization := range rawsByVector {
		for _, raw := range byRealization {
			if first {
				metadata = raw.Metadata
				first = false
				continue
			}
			if raw.Metadata != metadata {
				return timeseries.VectorMetadata{}
			}
		}
	}
	return metadata
}

// assembleSet merges per-realization series sharing one grid into an
// aligned set
func assembleSet(series []timeseries.ResampledSeries) timeseries.AlignedSet {
	set := timeseries.AlignedSet{
		Realizations: make([]int, len(series)),
		Values:       make([][]float64, len(series)),
		Present:      make([][]bool, len(series)),
	}
	if len(series) > 0 {
		set.Grid = series[0].Timestamps
	}
	for i, s := range series {
		set.Realizations[i] = s.Realization
		set.Values[i] = s.Values
		set.Present[i] = s.Present
	}
	return set
}
