package services

import (
	"context"
	"errors"
	"time"

	"github.com/bug-sentinel/webviz/internal/ensemble"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/models"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// VectorService handles vector query business logic
type VectorService struct {
	logger *logging.Logger
	store  ensemble.Store
}

// NewVectorService creates a new VectorService
func NewVectorService(logger *logging.Logger, store ensemble.Store) *VectorService {
	return &VectorService{
		logger: logger,
		store:  store,
	}
}

// RealizationDataResult holds aligned per-realization series plus vector
// metadata
type RealizationDataResult struct {
	Series   []timeseries.ResampledSeries
	Metadata timeseries.VectorMetadata
}

// StatisticsResult holds cross-realization statistics plus the order the
// statistics were requested in
type StatisticsResult struct {
	Result   *timeseries.StatisticResult
	Order    []timeseries.StatisticFunction
	Metadata timeseries.VectorMetadata
}

// GetVectorNames lists available vectors, optionally excluding vectors
// whose raw values are all zero or all constant across every realization
func (s *VectorService) GetVectorNames(ctx context.Context, input *models.VectorNamesRequest) ([]ensemble.VectorDescription, error) {
	descriptions, err := s.store.FetchVectorNames(ctx, input.CaseUUID, input.EnsembleName)
	if err != nil {
		return nil, s.storeError(err, "")
	}

	if !input.ExcludeAllValuesZero && !input.ExcludeAllValuesConstant {
		return descriptions, nil
	}

	filtered := make([]ensemble.VectorDescription, 0, len(descriptions))
	for _, description := range descriptions {
		series, err := s.store.FetchVector(ctx, input.CaseUUID, input.EnsembleName, description.Name, nil)
		if err != nil {
			return nil, s.storeError(err, description.Name)
		}

		if input.ExcludeAllValuesZero && allValuesZero(series) {
			continue
		}
		if input.ExcludeAllValuesConstant && allValuesConstant(series) {
			continue
		}
		filtered = append(filtered, description)
	}

	s.logger.Debug("Vector names filtered",
		"total", len(descriptions),
		"kept", len(filtered))
	return filtered, nil
}

// GetVectorMetadata returns unit and rate classification for one vector
func (s *VectorService) GetVectorMetadata(ctx context.Context, input *models.VectorNamesRequest, vectorName string) (*timeseries.VectorMetadata, error) {
	metadata, err := s.store.FetchVectorMetadata(ctx, input.CaseUUID, input.EnsembleName, vectorName)
	if err != nil {
		return nil, s.storeError(err, vectorName)
	}
	return metadata, nil
}

// GetRealizationVectorData returns the per-realization series for one
// vector. Raw mode keeps each realization on its own timestamp axis;
// a resampling frequency puts every realization on one shared grid.
func (s *VectorService) GetRealizationVectorData(ctx context.Context, input *models.VectorDataRequest) (*RealizationDataResult, error) {
	startTime := time.Now()

	var (
		series   []timeseries.ResampledSeries
		metadata timeseries.VectorMetadata
	)
	if input.FrequencyParsed == nil {
		raws, err := s.store.FetchVector(ctx, input.CaseUUID, input.EnsembleName, input.VectorName, input.RealizationsParsed)
		if err != nil {
			return nil, s.storeError(err, input.VectorName)
		}
		if len(raws) > 0 {
			metadata = raws[0].Metadata
		}
		series = rawRealizationSeries(raws, input.RelativeToParsed)
	} else {
		set, setMetadata, err := s.alignedSet(ctx, input)
		if err != nil {
			return nil, err
		}
		metadata = setMetadata
		series = make([]timeseries.ResampledSeries, len(set.Realizations))
		for i := range set.Realizations {
			series[i] = set.Series(i)
		}
	}

	logging.FromContext(ctx).Info("Realization data computed",
		"vector", input.VectorName,
		"realizations", len(series),
		"latency_ms", time.Since(startTime).Milliseconds())

	return &RealizationDataResult{Series: series, Metadata: metadata}, nil
}

// rawRealizationSeries passes each realization's raw points through
// unchanged, applying only the optional baseline subtraction. Empty
// realizations are skipped.
func rawRealizationSeries(raws []timeseries.RawSeries, reference *time.Time) []timeseries.ResampledSeries {
	series := make([]timeseries.ResampledSeries, 0, len(raws))
	for _, raw := range raws {
		if raw.Empty() {
			continue
		}
		out := timeseries.ResampledSeries{
			Realization: raw.Realization,
			Timestamps:  raw.Timestamps,
			Values:      raw.Values,
			Present:     make([]bool, len(raw.Values)),
		}
		for i := range out.Present {
			out.Present[i] = true
		}
		if reference != nil {
			out = timeseries.NormalizeSeries(out, raw, *reference)
		}
		series = append(series, out)
	}
	return series
}

// GetTimestamps returns the shared timestamp axis for an ensemble: the
// exact intersection in raw mode, the union-range frequency grid otherwise
func (s *VectorService) GetTimestamps(ctx context.Context, input *models.TimestampsRequest) ([]time.Time, error) {
	sets, err := s.store.FetchRealizationTimestamps(ctx, input.CaseUUID, input.EnsembleName, input.RealizationsParsed)
	if err != nil {
		return nil, s.storeError(err, "")
	}

	timestampSets := make([][]time.Time, 0, len(sets))
	for _, set := range sets {
		if len(set.Timestamps) == 0 {
			continue
		}
		timestampSets = append(timestampSets, set.Timestamps)
	}

	if input.FrequencyParsed == nil {
		return timeseries.IntersectTimestamps(timestampSets), nil
	}

	if len(timestampSets) == 0 {
		return []time.Time{}, nil
	}

	start, end := timestampSets[0][0], timestampSets[0][len(timestampSets[0])-1]
	for _, timestamps := range timestampSets[1:] {
		if timestamps[0].Before(start) {
			start = timestamps[0]
		}
		if last := timestamps[len(timestamps)-1]; last.After(end) {
			end = last
		}
	}

	grid, err := input.FrequencyParsed.Grid(start, end)
	if err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}
	return grid, nil
}

// GetStatisticalVectorData computes cross-realization statistics for one
// vector
func (s *VectorService) GetStatisticalVectorData(ctx context.Context, input *models.StatisticsRequest) (*StatisticsResult, error) {
	startTime := time.Now()

	set, metadata, err := s.alignedSet(ctx, &input.VectorDataRequest)
	if err != nil {
		return nil, err
	}

	order := input.FunctionsParsed
	if len(order) == 0 {
		order = timeseries.AllStatisticFunctions()
	}

	result, err := timeseries.Aggregate(set, order)
	if err != nil {
		if errors.Is(err, timeseries.ErrNoComputableStatistics) {
			return nil, NewServiceError(CodeNoStatistics, "no statistics can be computed for the requested range")
		}
		return nil, NewServiceError(CodeUpstreamFailure, err.Error())
	}

	logging.FromContext(ctx).Info("Statistics computed",
		"vector", input.VectorName,
		"realizations", len(set.Realizations),
		"grid_points", len(set.Grid),
		"statistics", len(order),
		"latency_ms", time.Since(startTime).Milliseconds())

	return &StatisticsResult{Result: result, Order: order, Metadata: metadata}, nil
}

// alignedSet runs the shared fetch → align → normalize pipeline
func (s *VectorService) alignedSet(ctx context.Context, input *models.VectorDataRequest) (timeseries.AlignedSet, timeseries.VectorMetadata, error) {
	raws, err := s.store.FetchVector(ctx, input.CaseUUID, input.EnsembleName, input.VectorName, input.RealizationsParsed)
	if err != nil {
		return timeseries.AlignedSet{}, timeseries.VectorMetadata{}, s.storeError(err, input.VectorName)
	}

	var metadata timeseries.VectorMetadata
	if len(raws) > 0 {
		metadata = raws[0].Metadata
	}

	var set timeseries.AlignedSet
	if input.FrequencyParsed == nil {
		set = timeseries.AlignRaw(raws)
	} else {
		set, err = timeseries.AlignResampled(raws, *input.FrequencyParsed)
		if err != nil {
			return timeseries.AlignedSet{}, timeseries.VectorMetadata{}, NewServiceError(CodeInvalidRequest, err.Error())
		}
	}

	if input.RelativeToParsed != nil {
		set = timeseries.Normalize(set, raws, *input.RelativeToParsed)
	}

	return set, metadata, nil
}

// storeError maps store failures into service errors
func (s *VectorService) storeError(err error, vectorName string) error {
	var unavailable *ensemble.UnavailableError
	if errors.As(err, &unavailable) {
		if unavailable.NotFound() {
			if vectorName != "" {
				return NewServiceErrorWithDetails(CodeVectorNotFound, "vector not found",
					map[string]interface{}{"vector": vectorName})
			}
			return NewServiceError(CodeDataUnavailable, "requested ensemble data not found")
		}
		s.logger.Error("Store fetch failed", "error", err)
		return NewServiceError(CodeUpstreamFailure, "failed to fetch data from series store")
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	s.logger.Error("Store fetch failed", "error", err)
	return NewServiceError(CodeUpstreamFailure, "failed to fetch data from series store")
}

func allValuesZero(series []timeseries.RawSeries) bool {
	for _, s := range series {
		for _, v := range s.Values {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

func allValuesConstant(series []timeseries.RawSeries) bool {
	first := false
	var reference float64
	for _, s := range series {
		for _, v := range s.Values {
			if !first {
				reference = v
				first = true
				continue
			}
			if v != reference {
				return false
			}
		}
	}
	return true
}
