package ensemble

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bug-sentinel/webviz/internal/config"
	"github.com/bug-sentinel/webviz/internal/logging"
	"github.com/bug-sentinel/webviz/internal/timeseries"
)

// HTTPStore fetches series data from the upstream object-store API over
// HTTP. Per-realization series are fetched concurrently, bounded by the
// configured fetch concurrency; the first failure cancels the remaining
// fetches and no partial result is returned.
type HTTPStore struct {
	baseURL       string
	client        *http.Client
	maxConcurrent int
	logger        *logging.Logger
}

// NewHTTPStore creates a store client for the configured upstream
func NewHTTPStore(cfg config.StoreConfig, logger *logging.Logger) *HTTPStore {
	maxConcurrent := cfg.MaxConcurrentFetches
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	return &HTTPStore{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		client:        &http.Client{Timeout: cfg.RequestTimeout},
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// realizationSeriesDTO is the upstream wire format for one realization
type realizationSeriesDTO struct {
	Realization int       `json:"realization"`
	Timestamps  []string  `json:"timestamps"`
	Values      []float64 `json:"values"`
	Unit        string    `json:"unit"`
	IsRate      bool      `json:"is_rate"`
}

type vectorMetadataDTO struct {
	Unit   string `json:"unit"`
	IsRate bool   `json:"is_rate"`
}

type realizationTimestampsDTO struct {
	Realization int      `json:"realization"`
	Timestamps  []string `json:"timestamps"`
}

// FetchVectorNames lists the vectors available in an ensemble
func (s *HTTPStore) FetchVectorNames(ctx context.Context, caseID, ensembleName string) ([]VectorDescription, error) {
	path := fmt.Sprintf("/cases/%s/ensembles/%s/vectors", url.PathEscape(caseID), url.PathEscape(ensembleName))

	var names []VectorDescription
	if err := s.getJSON(ctx, path, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FetchVectorMetadata returns unit and rate classification for a vector
func (s *HTTPStore) FetchVectorMetadata(ctx context.Context, caseID, ensembleName, vectorName string) (*timeseries.VectorMetadata, error) {
	path := fmt.Sprintf("/cases/%s/ensembles/%s/vectors/%s/metadata",
		url.PathEscape(caseID), url.PathEscape(ensembleName), url.PathEscape(vectorName))

	var dto vectorMetadataDTO
	if err := s.getJSON(ctx, path, &dto); err != nil {
		return nil, err
	}
	return &timeseries.VectorMetadata{Unit: dto.Unit, IsRate: dto.IsRate}, nil
}

// FetchVector fetches one raw series per realization, in parallel
func (s *HTTPStore) FetchVector(ctx context.Context, caseID, ensembleName, vectorName string, realizations []int) ([]timeseries.RawSeries, error) {
	ids := realizations
	if ids == nil {
		var err error
		ids, err = s.fetchRealizationIDs(ctx, caseID, ensembleName, vectorName)
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return []timeseries.RawSeries{}, nil
	}

	// Realizations are mutually independent all the way to aggregation, so
	// their fetches fan out. The shared context cancels in-flight fetches
	// as soon as one fails; aggregation requires the complete set.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]timeseries.RawSeries, len(ids))
	errs := make(chan error, len(ids))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, realization := range ids {
		wg.Add(1)
		go func(i, realization int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}

			series, err := s.fetchRealizationSeries(ctx, caseID, ensembleName, vectorName, realization)
			if err != nil {
				errs <- err
				cancel()
				return
			}
			results[i] = series
		}(i, realization)
	}
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Realization < results[j].Realization })
	return results, nil
}

// FetchRealizationTimestamps returns raw timestamp sets without values
func (s *HTTPStore) FetchRealizationTimestamps(ctx context.Context, caseID, ensembleName string, realizations []int) ([]RealizationTimestamps, error) {
	path := fmt.Sprintf("/cases/%s/ensembles/%s/timestamps", url.PathEscape(caseID), url.PathEscape(ensembleName))
	if len(realizations) > 0 {
		path += "?realizations=" + joinInts(realizations)
	}

	var dtos []realizationTimestampsDTO
	if err := s.getJSON(ctx, path, &dtos); err != nil {
		return nil, err
	}

	out := make([]RealizationTimestamps, len(dtos))
	for i, dto := range dtos {
		timestamps, err := parseTimestamps(dto.Timestamps)
		if err != nil {
			return nil, &UnavailableError{Op: "parse timestamps", Err: err}
		}
		if err := timeseries.ValidateTimestamps(timestamps); err != nil {
			return nil, &UnavailableError{
				Op:  fmt.Sprintf("validate timestamps for realization %d", dto.Realization),
				Err: err,
			}
		}
		out[i] = RealizationTimestamps{Realization: dto.Realization, Timestamps: timestamps}
	}
	return out, nil
}

func (s *HTTPStore) fetchRealizationIDs(ctx context.Context, caseID, ensembleName, vectorName string) ([]int, error) {
	path := fmt.Sprintf("/cases/%s/ensembles/%s/vectors/%s/realizations",
		url.PathEscape(caseID), url.PathEscape(ensembleName), url.PathEscape(vectorName))

	var ids []int
	if err := s.getJSON(ctx, path, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *HTTPStore) fetchRealizationSeries(ctx context.Context, caseID, ensembleName, vectorName string, realization int) (timeseries.RawSeries, error) {
	path := fmt.Sprintf("/cases/%s/ensembles/%s/vectors/%s/realizations/%d",
		url.PathEscape(caseID), url.PathEscape(ensembleName), url.PathEscape(vectorName), realization)

	var dto realizationSeriesDTO
	if err := s.getJSON(ctx, path, &dto); err != nil {
		return timeseries.RawSeries{}, err
	}

	timestamps, err := parseTimestamps(dto.Timestamps)
	if err != nil {
		return timeseries.RawSeries{}, &UnavailableError{Op: fmt.Sprintf("parse series for realization %d", realization), Err: err}
	}

	series := timeseries.RawSeries{
		Realization: dto.Realization,
		Timestamps:  timestamps,
		Values:      dto.Values,
		Metadata:    timeseries.VectorMetadata{Unit: dto.Unit, IsRate: dto.IsRate},
	}
	if err := series.Validate(); err != nil {
		return timeseries.RawSeries{}, &UnavailableError{Op: "validate upstream series", Err: err}
	}
	return series, nil
}

// getJSON performs a GET against the upstream and decodes the JSON body.
// Failures are reported as UnavailableError carrying the upstream status.
func (s *HTTPStore) getJSON(ctx context.Context, path string, out interface{}) error {
	fullURL := s.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &UnavailableError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &UnavailableError{Op: "GET " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Upstream request failed",
			"path", path,
			"status", resp.StatusCode)
		return &UnavailableError{Op: "GET " + path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UnavailableError{Op: "decode " + path, Err: err}
	}
	return nil
}

func parseTimestamps(raw []string) ([]time.Time, error) {
	timestamps := make([]time.Time, len(raw))
	for i, s := range raw {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", s, err)
		}
		timestamps[i] = t.UTC()
	}
	return timestamps, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
